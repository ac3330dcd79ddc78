package render

import (
	"fmt"
	"sync"
	"time"

	"github.com/ndimray/ndimray/pixel"
	"github.com/ndimray/ndimray/rterr"
	"github.com/ndimray/ndimray/scene"
	"github.com/ndimray/ndimray/simd/contrib/workerpool"
)

// CallbackRenderer dispatches every tile onto a persistent workerpool.Pool
// and invokes the caller's callback once the pool has drained. Per
// spec.md §4.H, a second BeginRender while one is outstanding fails with
// AlreadyRunning, and AbortRender blocks until the outstanding pass has
// quiesced. The pool is built once and reused across BeginRender calls,
// per workerpool's own "create once, reuse" contract.
type CallbackRenderer struct {
	threads int
	instr   Instrumentation
	pool    *workerpool.Pool

	mu      sync.Mutex
	cond    *sync.Cond
	state   RunState
	running bool
}

// NewCallbackRenderer builds a renderer with threads workers (<=0 selects
// GOMAXPROCS). instr may be nil.
func NewCallbackRenderer(threads int, instr Instrumentation) *CallbackRenderer {
	if instr == nil {
		instr = noopInstrumentation{}
	}
	workers := resolveWorkers(threads)
	r := &CallbackRenderer{threads: workers, instr: instr, pool: workerpool.New(workers)}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Close shuts down the renderer's worker pool. Safe to call once no render
// is outstanding; the renderer must not be reused afterward.
func (r *CallbackRenderer) Close() {
	r.pool.Close()
}

// BeginRender starts an asynchronous render of sc into dest and returns
// immediately; callback fires exactly once, from a goroutine BeginRender
// starts, after the pool has finished every tile index, with (true, nil) on
// completion or (false, nil) on abort. It is not invoked from the worker
// that finishes the last tile.
func (r *CallbackRenderer) BeginRender(dest []byte, format pixel.ImageFormat, sc *scene.Scene, callback func(completed bool, err error)) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("render.BeginRender: %w", rterr.ErrAlreadyRunning)
	}
	r.running = true
	r.state = StateNormal
	r.mu.Unlock()

	tiles, err := prepare(format, sc, dest)
	if err != nil {
		r.mu.Lock()
		r.running = false
		r.cond.Broadcast()
		r.mu.Unlock()
		return err
	}

	sc.Lock()

	finish := func() {
		sc.Unlock()
		r.mu.Lock()
		completed := r.state == StateNormal
		r.running = false
		r.cond.Broadcast()
		r.mu.Unlock()
		callback(completed, nil)
	}

	renderOne := func(idx int) {
		r.mu.Lock()
		state := r.state
		r.mu.Unlock()
		if state != StateNormal {
			return
		}
		start := time.Now()
		r.instr.TileStarted()
		x0, y0, x1, y1 := tileBounds(idx, format.Width, format.Height)
		if terr := renderTile(sc, format, dest, x0, y0, x1, y1); terr != nil {
			return
		}
		r.instr.RaysTraced(int64((x1 - x0) * (y1 - y0)))
		r.instr.TileFinished(time.Since(start))
	}

	// BeginRender must return immediately, so the pool's blocking call runs
	// on its own goroutine; the pool's atomic work-stealing counter (the
	// index ParallelForAtomic hands each worker) is spec.md §4.H's "atomic
	// counter serves as the work index."
	go func() {
		r.pool.ParallelForAtomic(tiles, renderOne)
		finish()
	}()
	return nil
}

// AbortRender cancels the outstanding render and blocks until its workers
// have stopped and the scene is unlocked, per spec.md §4.H. The callback
// runs just after that and may not have returned yet when AbortRender
// does. A no-op if nothing is running.
func (r *CallbackRenderer) AbortRender() {
	r.mu.Lock()
	if r.state == StateNormal {
		r.state = StateCancel
	}
	for r.running {
		r.cond.Wait()
	}
	r.mu.Unlock()
}
