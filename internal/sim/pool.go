package sim

import (
	"sync"

	"github.com/san-kum/vxsim/internal/verlet"
)

// FramePool recycles frames that are observed but not recorded.
type FramePool struct {
	pool sync.Pool
}

func NewFramePool() *FramePool {
	return &FramePool{
		pool: sync.Pool{
			New: func() interface{} {
				return new(verlet.Frame)
			},
		},
	}
}

func (p *FramePool) Get() *verlet.Frame {
	return p.pool.Get().(*verlet.Frame)
}

func (p *FramePool) Put(f *verlet.Frame) {
	if f != nil {
		p.pool.Put(f)
	}
}

// Capture snapshots e into a pooled frame.
func (p *FramePool) Capture(e *verlet.Engine) *verlet.Frame {
	f := p.Get()
	e.SnapshotInto(f)
	return f
}
