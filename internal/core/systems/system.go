package systems

import "time"

// System is one stage of the simulation frame.
type System interface {
	Name() string
	Phase() ExecutionPhase
	Update(deltaTime float64) error
}

// ExecutionPhase defines when a system runs within a frame. Phases run in
// ascending order.
type ExecutionPhase uint8

const (
	// PhaseFixedUpdate moves bodies and resolves collisions.
	PhaseFixedUpdate ExecutionPhase = iota
	// PhaseTrigger delivers trigger enter and exit callbacks.
	PhaseTrigger
	// PhaseLateUpdate runs portal crossings and teleports.
	PhaseLateUpdate
	PhasePreRender
	PhaseRender
	PhasePostRender
)

var phaseNames = [...]string{
	PhaseFixedUpdate: "fixed_update",
	PhaseTrigger:     "trigger",
	PhaseLateUpdate:  "late_update",
	PhasePreRender:   "pre_render",
	PhaseRender:      "render",
	PhasePostRender:  "post_render",
}

func (p ExecutionPhase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Phases lists every phase in execution order.
func Phases() []ExecutionPhase {
	return []ExecutionPhase{PhaseFixedUpdate, PhaseTrigger, PhaseLateUpdate, PhasePreRender, PhaseRender, PhasePostRender}
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	MinExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
	LastDuration         time.Duration
}

func (m *Metrics) record(start time.Time, d time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += d
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	m.MaxExecutionTime = max(m.MaxExecutionTime, d)
	if m.ExecutionCount == 1 || d < m.MinExecutionTime {
		m.MinExecutionTime = d
	}
	m.LastExecutionTime = start
	m.LastDuration = d
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}

// Func adapts a plain function to a System.
type Func struct {
	name  string
	phase ExecutionPhase
	fn    func(deltaTime float64) error
}

func NewFunc(name string, phase ExecutionPhase, fn func(deltaTime float64) error) *Func {
	return &Func{name: name, phase: phase, fn: fn}
}

func (f *Func) Name() string                   { return f.name }
func (f *Func) Phase() ExecutionPhase          { return f.phase }
func (f *Func) Update(deltaTime float64) error { return f.fn(deltaTime) }
