// Package render implements the tiled render driver: a pool of worker
// goroutines carving the output image into fixed-size tiles, each pixel
// traced independently through scene.Scene.CalculateColor and packed into
// the destination buffer via pixel.Pack. Two driver variants share the
// tile-scheduling logic in this file: BlockingRenderer (blocking.go) and
// CallbackRenderer (callback.go).
package render

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/ndimray/ndimray/pixel"
	"github.com/ndimray/ndimray/rterr"
	"github.com/ndimray/ndimray/scene"
)

// tileSize is the fixed chunk the image is carved into, per spec.md §5's
// "Tile size 32×32."
const tileSize = 32

// RunState is the tri-state cancellation flag spec.md §5 assigns to every
// renderer: NORMAL while rendering, CANCEL once aborted, QUIT once the
// renderer itself is being torn down.
type RunState int32

const (
	StateNormal RunState = iota
	StateCancel
	StateQuit
)

// Instrumentation lets a caller observe a render pass without the core
// depending on any particular metrics backend, following the shape of
// original_source/src/instrumentation.hpp.
type Instrumentation interface {
	TileStarted()
	TileFinished(dur time.Duration)
	RaysTraced(n int64)
}

// noopInstrumentation discards every event; it is the default when a
// renderer is constructed without one.
type noopInstrumentation struct{}

func (noopInstrumentation) TileStarted()               {}
func (noopInstrumentation) TileFinished(time.Duration) {}
func (noopInstrumentation) RaysTraced(int64)            {}

// SlogInstrumentation reports tile timing and ray counts through a
// structured logger, grounded on _examples/CWBudde-MayFlyCircleFit's
// pattern of passing one *slog.Logger down into long-running work rather
// than using a package-global.
type SlogInstrumentation struct {
	Logger *slog.Logger
	tiles  atomic.Int64
	rays   atomic.Int64
}

func (s *SlogInstrumentation) TileStarted() { s.tiles.Add(1) }

func (s *SlogInstrumentation) TileFinished(dur time.Duration) {
	s.Logger.Debug("render tile finished", "duration", dur, "tiles_done", s.tiles.Load())
}

func (s *SlogInstrumentation) RaysTraced(n int64) { s.rays.Add(n) }

// tileBounds returns the pixel rectangle [x0,x1)x[y0,y1) for the idx-th
// tile in row-major tile order over a width x height image.
func tileBounds(idx, width, height int) (x0, y0, x1, y1 int) {
	tilesPerRow := (width + tileSize - 1) / tileSize
	tx := idx % tilesPerRow
	ty := idx / tilesPerRow
	x0 = tx * tileSize
	y0 = ty * tileSize
	x1 = min(x0+tileSize, width)
	y1 = min(y0+tileSize, height)
	return
}

// tileCount returns the number of tiles covering a width x height image.
func tileCount(width, height int) int {
	tilesPerRow := (width + tileSize - 1) / tileSize
	tilesPerCol := (height + tileSize - 1) / tileSize
	return tilesPerRow * tilesPerCol
}

// renderTile traces and packs every pixel of one tile into dest.
func renderTile(sc *scene.Scene, format pixel.ImageFormat, dest []byte, x0, y0, x1, y1 int) error {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c, err := sc.CalculateColor(x, y)
			if err != nil {
				return err
			}
			if err := pixel.WritePixel(dest, x, y, format, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveWorkers follows spec.md §5's "static pools sized to
// hardware_concurrency": threads <= 0 selects runtime.GOMAXPROCS(0).
func resolveWorkers(threads int) int {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	if threads < 1 {
		threads = 1
	}
	return threads
}

// prepare validates the format/scene pair and fixes the scene's view size
// to match it, returning the tile count to schedule. Shared setup for both
// driver variants.
func prepare(format pixel.ImageFormat, sc *scene.Scene, dest []byte) (int, error) {
	if err := format.Validate(); err != nil {
		return 0, err
	}
	need := format.RowPitch() * format.Height
	if len(dest) < need {
		return 0, fmt.Errorf("render.prepare: dest len=%d want >= %d: %w", len(dest), need, rterr.ErrBufferTooSmall)
	}
	if err := sc.SetViewSize(format.Width, format.Height); err != nil {
		return 0, err
	}
	return tileCount(format.Width, format.Height), nil
}
