package display

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Texture is a render target owned by exactly one portal pair.
type Texture interface {
	ID() uuid.UUID
	Size() (width, height int)
	Release()
}

// TextureAllocator creates render targets.
type TextureAllocator interface {
	CreateTexture(width, height int) (Texture, error)
}

// EnsureTexture returns a texture of the requested size bound to screen. The
// current texture is reused when the size matches; otherwise a new one is
// allocated and the old one is released by Bind.
func EnsureTexture(screen *Screen, alloc TextureAllocator, width, height int) (Texture, bool, error) {
	if width <= 0 || height <= 0 {
		return nil, false, fmt.Errorf("%w: %dx%d", ErrZeroViewport, width, height)
	}
	if cur := screen.Texture(); cur != nil {
		if w, h := cur.Size(); w == width && h == height {
			return cur, false, nil
		}
	}
	tex, err := alloc.CreateTexture(width, height)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrTextureAllocation, err)
	}
	screen.Bind(tex)
	return tex, true, nil
}

// MemoryTexture is a CPU-side placeholder texture. It carries no pixels and is
// used by headless runs and tests.
type MemoryTexture struct {
	id       uuid.UUID
	width    int
	height   int
	released bool
	owner    *MemoryAllocator
}

func (t *MemoryTexture) ID() uuid.UUID    { return t.id }
func (t *MemoryTexture) Size() (int, int) { return t.width, t.height }
func (t *MemoryTexture) Released() bool   { return t.released }

func (t *MemoryTexture) String() string {
	return fmt.Sprintf("tex(%s %dx%d)", t.id, t.width, t.height)
}

func (t *MemoryTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	if t.owner != nil {
		t.owner.release(t)
	}
}

// MemoryAllocator hands out MemoryTextures and keeps count of live ones.
type MemoryAllocator struct {
	mu       sync.Mutex
	live     map[uuid.UUID]*MemoryTexture
	created  int
	released int
}

func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{live: make(map[uuid.UUID]*MemoryTexture)}
}

func (a *MemoryAllocator) CreateTexture(width, height int) (Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroViewport, width, height)
	}
	t := &MemoryTexture{id: uuid.New(), width: width, height: height, owner: a}
	a.mu.Lock()
	a.live[t.id] = t
	a.created++
	a.mu.Unlock()
	return t, nil
}

func (a *MemoryAllocator) release(t *MemoryTexture) {
	a.mu.Lock()
	delete(a.live, t.id)
	a.released++
	a.mu.Unlock()
}

// Live is the number of textures created and not yet released.
func (a *MemoryAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Stats returns the total created and released counts.
func (a *MemoryAllocator) Stats() (created, released int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.created, a.released
}
