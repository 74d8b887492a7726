package rle

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Encoding errors reported against the descriptor that requested the
// encode.
var (
	ErrFrameSize  = errors.New("rle: invalid frame size")
	ErrMaskSize   = errors.New("rle: mask does not match sprite")
	ErrSpriteSize = errors.New("rle: sprite does not match frame size")
)

// A pixel_run opcode costs eight bytes regardless of length, so runs
// shorter than this are cheaper left inline in a pixel_data block.
const minRun = 5

type linePixel struct {
	value  uint16
	opaque bool
}

type encoder struct {
	buf  bytes.Buffer
	line bytes.Buffer
}

// Encode splits sprite into a grid of frameWidth by frameHeight cells and
// packs them as a rlëD stream. Pixels whose mask is pure black become
// transparent; all others keep the sprite pixel. Frames are emitted in
// row-major order and pixels are stored as big-endian RGB555 words.
func Encode(sprite, mask *image.RGBA, frameWidth, frameHeight int) ([]byte, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return nil, ErrFrameSize
	}
	sb := sprite.Bounds()
	mb := mask.Bounds()
	if mb.Dx() != sb.Dx() || mb.Dy() != sb.Dy() {
		return nil, ErrMaskSize
	}
	if sb.Dx()%frameWidth != 0 || sb.Dy()%frameHeight != 0 {
		return nil, ErrSpriteSize
	}

	applyMask(sprite, mask)

	cols := sb.Dx() / frameWidth
	rows := sb.Dy() / frameHeight

	e := new(encoder)
	writeShort(&e.buf, uint16(frameWidth))
	writeShort(&e.buf, uint16(frameHeight))
	writeShort(&e.buf, 16) // pixel depth
	writeShort(&e.buf, 0)
	writeShort(&e.buf, uint16(cols*rows))
	e.buf.Write(make([]byte, 6))

	px := make([]linePixel, frameWidth)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			for y := 0; y < frameHeight; y++ {
				for x := 0; x < frameWidth; x++ {
					c := sprite.RGBAAt(sb.Min.X+col*frameWidth+x, sb.Min.Y+row*frameHeight+y)
					px[x] = linePixel{value: rgb555(c), opaque: c.A != 0}
				}
				e.writeLine(px)
			}
			writeWord(&e.buf, 0)
		}
	}
	return e.buf.Bytes(), nil
}

// applyMask makes every sprite pixel transparent where the mask is pure
// black. Non-black mask pixels leave the sprite untouched; the cutout is
// binary, not alpha-weighted.
func applyMask(sprite, mask *image.RGBA) {
	sb := sprite.Bounds()
	mb := mask.Bounds()
	for y := 0; y < sb.Dy(); y++ {
		for x := 0; x < sb.Dx(); x++ {
			m := mask.RGBAAt(mb.Min.X+x, mb.Min.Y+y)
			if m.R == 0 && m.G == 0 && m.B == 0 {
				sprite.SetRGBA(sb.Min.X+x, sb.Min.Y+y, color.RGBA{})
			}
		}
	}
}

func rgb555(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<10 | uint16(c.G>>3)<<5 | uint16(c.B>>3)
}

// writeLine emits one line record. The line payload alternates
// transparent_run, pixel_run and pixel_data opcodes; a run of transparent
// pixels reaching the end of the line is omitted rather than encoded.
func (e *encoder) writeLine(px []linePixel) {
	e.line.Reset()
	i := 0
	for i < len(px) {
		if !px[i].opaque {
			j := i
			for j < len(px) && !px[j].opaque {
				j++
			}
			if j == len(px) {
				break
			}
			writeWord(&e.line, packOp(OpTransparentRun, uint32((j-i)*2)))
			i = j
			continue
		}
		j := i
		for j < len(px) && px[j].opaque {
			j++
		}
		e.writePixels(px[i:j])
		i = j
	}
	writeWord(&e.buf, packOp(OpLineStart, uint32(e.line.Len())))
	e.buf.Write(e.line.Bytes())
}

// writePixels packs a stretch of opaque pixels, switching to pixel_run
// opcodes for runs long enough to pay for themselves.
func (e *encoder) writePixels(px []linePixel) {
	i := 0
	lit := 0
	for i < len(px) {
		j := i + 1
		for j < len(px) && px[j].value == px[i].value {
			j++
		}
		if j-i >= minRun {
			if i > lit {
				e.writeData(px[lit:i])
			}
			writeWord(&e.line, packOp(OpPixelRun, uint32((j-i)*2)))
			writeWord(&e.line, uint32(px[i].value)<<16|uint32(px[i].value))
			lit = j
		}
		i = j
	}
	if len(px) > lit {
		e.writeData(px[lit:])
	}
}

func (e *encoder) writeData(px []linePixel) {
	writeWord(&e.line, packOp(OpPixelData, uint32(len(px)*2)))
	var b [2]byte
	for _, p := range px {
		binary.BigEndian.PutUint16(b[:], p.value)
		e.line.Write(b[:])
	}
	if len(px)%2 != 0 {
		e.line.Write([]byte{0, 0}) // keep the stream word aligned
	}
}
