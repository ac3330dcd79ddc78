package render

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ndimray/ndimray/pixel"
	"github.com/ndimray/ndimray/scene"
)

// BlockingRenderer renders a single pass synchronously: the calling
// goroutine participates in the tile loop alongside threads-1 worker
// goroutines, per spec.md §4.H. Render returns once every tile is done or
// SignalAbort was called.
type BlockingRenderer struct {
	threads int
	instr   Instrumentation

	mu    sync.Mutex
	state RunState
}

// NewBlockingRenderer builds a renderer with threads workers (<=0 selects
// GOMAXPROCS). instr may be nil, in which case events are discarded.
func NewBlockingRenderer(threads int, instr Instrumentation) *BlockingRenderer {
	if instr == nil {
		instr = noopInstrumentation{}
	}
	return &BlockingRenderer{threads: resolveWorkers(threads), instr: instr}
}

func (r *BlockingRenderer) currentState() RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Render traces every pixel of sc into dest, formatted per format. It
// returns (true, nil) on a completed render, (false, nil) if aborted via
// SignalAbort, and a non-nil error only for a setup failure (bad format,
// locked scene, undersized buffer) per spec.md §7.
func (r *BlockingRenderer) Render(dest []byte, format pixel.ImageFormat, sc *scene.Scene) (bool, error) {
	tiles, err := prepare(format, sc, dest)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	r.state = StateNormal
	r.mu.Unlock()

	sc.Lock()
	defer sc.Unlock()

	var nextTile atomic.Int64
	worker := func() {
		for {
			if r.currentState() != StateNormal {
				return
			}
			idx := int(nextTile.Add(1)) - 1
			if idx >= tiles {
				return
			}
			start := time.Now()
			r.instr.TileStarted()
			x0, y0, x1, y1 := tileBounds(idx, format.Width, format.Height)
			if terr := renderTile(sc, format, dest, x0, y0, x1, y1); terr != nil {
				// Intersection/shading never fail in this core; a per-pixel
				// error here can only come from the pixel packer, which is
				// pure and format-validated up front. Treat as unreachable
				// for a given tile rather than aborting every other worker.
				continue
			}
			r.instr.RaysTraced(int64((x1 - x0) * (y1 - y0)))
			r.instr.TileFinished(time.Since(start))
		}
	}

	var wg sync.WaitGroup
	if r.threads > 1 {
		wg.Add(r.threads - 1)
		for i := 0; i < r.threads-1; i++ {
			go func() {
				defer wg.Done()
				worker()
			}()
		}
	}
	worker()
	wg.Wait()

	return r.currentState() == StateNormal, nil
}

// SignalAbort requests the in-flight Render call stop at the next tile
// boundary. Safe to call from any goroutine; a no-op if no render is
// outstanding.
func (r *BlockingRenderer) SignalAbort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateNormal {
		r.state = StateCancel
	}
}
