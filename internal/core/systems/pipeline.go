package systems

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/zeusync/portals/internal/core/observability/log"
)

var ErrDuplicateSystem = errors.New("system already registered")

type entry struct {
	system  System
	order   int
	metrics Metrics
}

// Pipeline runs registered systems once per frame, phase by phase. Systems in
// the same phase run in registration order. A failing system does not stop
// the frame.
type Pipeline struct {
	entries []*entry
	byName  map[string]*entry
	frames  uint64
	logger  log.Log
}

func NewPipeline(logger log.Log) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{
		byName: make(map[string]*entry),
		logger: logger.Named("pipeline"),
	}
}

// Register adds a system.
func (p *Pipeline) Register(s System) error {
	if _, ok := p.byName[s.Name()]; ok {
		return fmt.Errorf("%s: %w", s.Name(), ErrDuplicateSystem)
	}
	e := &entry{system: s, order: len(p.entries)}
	p.entries = append(p.entries, e)
	p.byName[s.Name()] = e
	sort.SliceStable(p.entries, func(i, j int) bool {
		if p.entries[i].system.Phase() != p.entries[j].system.Phase() {
			return p.entries[i].system.Phase() < p.entries[j].system.Phase()
		}
		return p.entries[i].order < p.entries[j].order
	})
	return nil
}

// Update runs one frame. The returned error joins every system failure.
func (p *Pipeline) Update(deltaTime float64) error {
	p.frames++
	var errs []error
	for _, e := range p.entries {
		start := time.Now()
		err := e.system.Update(deltaTime)
		e.metrics.record(start, time.Since(start), err)
		if err != nil {
			p.logger.Warn("System update failed",
				log.String("system", e.system.Name()),
				log.String("phase", e.system.Phase().String()),
				log.Uint64("frame", p.frames),
				log.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", e.system.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Systems returns system names in execution order.
func (p *Pipeline) Systems() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.system.Name()
	}
	return out
}

// Metrics returns a snapshot for the named system.
func (p *Pipeline) Metrics(name string) (Metrics, bool) {
	e, ok := p.byName[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}

func (p *Pipeline) Frames() uint64 { return p.frames }
