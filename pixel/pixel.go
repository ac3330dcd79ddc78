// Package pixel implements the pixel-format channel-packer spec.md §1
// treats as an external collaborator (pack(color[], format) → bytes).
// It exists here as a concrete reference implementation so render can
// produce bytes without inventing its own ad hoc packing: a Channel/
// ImageFormat description, and Pack/WritePixel to turn a linalg.Color into
// the destination buffer's native layout.
package pixel

import (
	"fmt"
	"math"

	"github.com/ndimray/ndimray/linalg"
	"github.com/ndimray/ndimray/rterr"
	"github.com/ndimray/ndimray/simd"
)

// maxPixelSize is MAX_PIXELSIZE: the largest a single packed pixel may be.
const maxPixelSize = 16

// Channel describes one packed color component: how many bits it occupies,
// its RGB mixing coefficients (e.g. R=1,G=0,B=0 for a pure red channel, or
// equal thirds for a luminance channel), and whether it is stored as an
// IEEE-754 float rather than a normalized integer.
type Channel struct {
	BitSize int
	RCoeff  linalg.Real
	GCoeff  linalg.Real
	BCoeff  linalg.Real
	Float   bool
}

// value mixes a color's channels by this Channel's coefficients.
func (ch Channel) value(c linalg.Color) linalg.Real {
	return c.R*ch.RCoeff + c.G*ch.GCoeff + c.B*ch.BCoeff
}

// ImageFormat describes a destination buffer's pixel layout: an ordered
// list of channels, the image's dimensions, its row pitch in bytes (0
// selects width*pixel-size, i.e. no row padding), and whether each packed
// pixel's bytes should be reversed (for endian-swapped targets).
type ImageFormat struct {
	Channels []Channel
	Width    int
	Height   int
	Pitch    int
	Reversed bool
}

// PixelSize returns the number of bytes one packed pixel occupies: the
// channel bit-sizes summed and rounded up to a whole byte.
func (f ImageFormat) PixelSize() int {
	bits := 0
	for _, ch := range f.Channels {
		bits += ch.BitSize
	}
	return (bits + 7) / 8
}

// RowPitch returns f.Pitch if set, otherwise Width*PixelSize().
func (f ImageFormat) RowPitch() int {
	if f.Pitch > 0 {
		return f.Pitch
	}
	return f.Width * f.PixelSize()
}

// Validate checks spec.md §5's channel-bit-size thresholds: non-float
// channels must fit in 31 bits, float channels must be exactly 32, and the
// packed pixel must not exceed MAX_PIXELSIZE.
func (f ImageFormat) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("pixel.Validate: width=%d height=%d: %w", f.Width, f.Height, rterr.ErrBadChannelFormat)
	}
	if len(f.Channels) == 0 {
		return fmt.Errorf("pixel.Validate: no channels: %w", rterr.ErrBadChannelFormat)
	}
	for i, ch := range f.Channels {
		if ch.Float {
			if ch.BitSize != 32 {
				return fmt.Errorf("pixel.Validate: channel %d is float but bit_size=%d (want 32): %w", i, ch.BitSize, rterr.ErrBadChannelFormat)
			}
		} else if ch.BitSize <= 0 || ch.BitSize > 31 {
			return fmt.Errorf("pixel.Validate: channel %d bit_size=%d out of range (1..31): %w", i, ch.BitSize, rterr.ErrBadChannelFormat)
		}
	}
	if size := f.PixelSize(); size > maxPixelSize {
		return fmt.Errorf("pixel.Validate: pixel_size=%d exceeds max %d: %w", size, maxPixelSize, rterr.ErrBadChannelFormat)
	}
	return nil
}

// bitWriter packs successive fixed-width fields MSB-first into a byte
// buffer. The field and keep masks are built with plain Go bit operators;
// each byte's untouched bits are then kept and combined with the new field
// through simd.And/Or.
type bitWriter struct {
	buf    []byte
	bitPos int
}

func newBitWriter(nbytes int) *bitWriter {
	return &bitWriter{buf: make([]byte, nbytes)}
}

func (w *bitWriter) writeBits(value uint32, nbits int) {
	for nbits > 0 {
		byteIdx := w.bitPos / 8
		bitOff := w.bitPos % 8
		free := 8 - bitOff
		take := min(nbits, free)

		// Top `take` bits of the remaining value, placed just below the
		// bits already written in this byte.
		shift := uint(nbits - take)
		rest := uint(free - take)
		chunk := byte(((value >> shift) & ((1 << take) - 1)) << rest)
		writeMask := byte(((1 << take) - 1) << rest)

		existing := simd.Set(uint32(w.buf[byteIdx]))
		keepMask := simd.Set(uint32(0xFF &^ writeMask))
		kept := simd.And(existing, keepMask)
		placed := simd.Or(kept, simd.Set(uint32(chunk)))
		w.buf[byteIdx] = byte(placed.Data()[0])

		w.bitPos += take
		nbits -= take
	}
}

// Pack mixes c through every channel of format and returns the packed
// pixel's bytes (length format.PixelSize()), honoring format.Reversed.
func Pack(c linalg.Color, format ImageFormat) ([]byte, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	w := newBitWriter(format.PixelSize())
	for _, ch := range format.Channels {
		v := ch.value(c)
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		if ch.Float {
			w.writeBits(math.Float32bits(float32(v)), 32)
			continue
		}
		maxVal := (uint32(1) << uint(ch.BitSize)) - 1
		quant := uint32(v*linalg.Real(maxVal) + 0.5)
		w.writeBits(quant, ch.BitSize)
	}
	out := w.buf
	if format.Reversed {
		out = reversed(out)
	}
	return out, nil
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// WritePixel packs c and writes it into dest at pixel (x,y), per format's
// row pitch. dest must be at least RowPitch()*Height bytes, per spec.md
// §6's dest_buffer constraint.
func WritePixel(dest []byte, x, y int, format ImageFormat, c linalg.Color) error {
	if x < 0 || x >= format.Width || y < 0 || y >= format.Height {
		return fmt.Errorf("pixel.WritePixel: (%d,%d) outside %dx%d: %w", x, y, format.Width, format.Height, rterr.ErrBadChannelFormat)
	}
	pitch := format.RowPitch()
	size := format.PixelSize()
	if len(dest) < pitch*format.Height {
		return fmt.Errorf("pixel.WritePixel: dest len=%d want >= %d: %w", len(dest), pitch*format.Height, rterr.ErrBufferTooSmall)
	}
	packed, err := Pack(c, format)
	if err != nil {
		return err
	}
	off := y*pitch + x*size
	copy(dest[off:off+size], packed)
	return nil
}
