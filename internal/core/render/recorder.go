package render

import (
	"sync"

	"github.com/zeusync/portals/internal/core/display"
)

// DefaultHistory is the number of draws a long-running Recorder keeps.
const DefaultHistory = 256

// Recorder is a headless Renderer that records draw calls. Textures come
// from an in-memory allocator.
type Recorder struct {
	mu      sync.Mutex
	width   int
	height  int
	alloc   *display.MemoryAllocator
	calls   []DrawCall
	history int
	total   uint64

	// OnDraw, when set, runs for every draw before it is recorded. Returning
	// an error fails the draw.
	OnDraw func(DrawCall) error
}

func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height, alloc: display.NewMemoryAllocator()}
}

func (r *Recorder) Viewport() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// Resize changes the reported viewport.
func (r *Recorder) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

func (r *Recorder) CreateTexture(width, height int) (display.Texture, error) {
	return r.alloc.CreateTexture(width, height)
}

func (r *Recorder) RenderCamera(call DrawCall) error {
	if r.OnDraw != nil {
		if err := r.OnDraw(call); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	r.calls = append(r.calls, call)
	if r.history > 0 && len(r.calls) > r.history {
		n := copy(r.calls, r.calls[len(r.calls)-r.history:])
		r.calls = r.calls[:n]
	}
	return nil
}

// SetHistory keeps only the latest n draws. Zero keeps all of them.
func (r *Recorder) SetHistory(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = max(n, 0)
	if r.history > 0 && len(r.calls) > r.history {
		n := copy(r.calls, r.calls[len(r.calls)-r.history:])
		r.calls = r.calls[:n]
	}
}

// Total counts every successful draw, including ones dropped from history.
func (r *Recorder) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Calls returns a copy of the recorded draws.
func (r *Recorder) Calls() []DrawCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DrawCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// Reset drops recorded draws.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = r.calls[:0]
}

func (r *Recorder) Allocator() *display.MemoryAllocator { return r.alloc }
