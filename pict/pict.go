/*
Package pict implements a QuickDraw version 2 picture decoder and encoder.

Decoding produces an RGBA surface plus a format tag: 1, 2, 4 or 8 for
indexed pixel maps, 16 or 32 for direct ones, or the four-character codec
code (always greater than 32) for QuickTime-wrapped pictures. Encoding
emits a minimal normalized picture holding a single pixel map opcode that
covers the whole frame.
*/
package pict

import (
	"encoding/binary"
	"image"
	"strconv"

	"github.com/pkg/errors"
)

// Picture opcodes understood by the decoder.
const (
	opNop           = 0x0000
	opClip          = 0x0001
	opOrigin        = 0x000c
	opVersion       = 0x0011
	opDefHilite     = 0x001e
	opBitsRect      = 0x0090
	opPackBitsRect  = 0x0098
	opDirectBits    = 0x009a
	opShortComment  = 0x00a0
	opLongComment   = 0x00a1
	opEndPic        = 0x00ff
	opHeader        = 0x0c00
	opCompressedQT  = 0x8200
	opUncompressedQT = 0x8201
)

var errShort = errors.New("pict: unexpected end of picture data")

// Pict is a decoded picture. The surface is owned by the Pict; callers
// may mutate it in place (e.g. to dither) before re-encoding.
type Pict struct {
	surface *image.RGBA
	format  int
	frame   rect
}

// New wraps an existing surface as a 32-bit picture ready for encoding.
func New(img *image.RGBA) *Pict {
	b := img.Bounds()
	return &Pict{
		surface: img,
		format:  32,
		frame:   rect{bottom: int16(b.Dy()), right: int16(b.Dx())},
	}
}

// ImageSurface returns the picture's pixel surface.
func (p *Pict) ImageSurface() *image.RGBA { return p.surface }

// Format returns the pixel depth of the picture's pixel map, or the
// four-character codec code for QuickTime-wrapped pictures.
func (p *Pict) Format() int { return p.format }

// FormatName renders a format tag for reporting: a depth as "16-bit", a
// codec code as its four characters.
func FormatName(format int) string {
	if format > 32 {
		code := uint32(format)
		return string([]byte{byte(code >> 24), byte(code >> 16), byte(code >> 8), byte(code)})
	}
	return strconv.Itoa(format) + "-bit"
}

type rect struct {
	top, left, bottom, right int16
}

func (r rect) width() int  { return int(r.right) - int(r.left) }
func (r rect) height() int { return int(r.bottom) - int(r.top) }

// buffer is a bounds-checked cursor over picture data.
type buffer struct {
	data []byte
	pos  int
}

func (b *buffer) read(n int) ([]byte, error) {
	if n < 0 || b.pos+n > len(b.data) {
		return nil, errShort
	}
	v := b.data[b.pos : b.pos+n]
	b.pos += n
	return v, nil
}

func (b *buffer) skip(n int) error {
	_, err := b.read(n)
	return err
}

func (b *buffer) readU8() (uint8, error) {
	v, err := b.read(1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (b *buffer) readU16() (uint16, error) {
	v, err := b.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(v), nil
}

func (b *buffer) readU32() (uint32, error) {
	v, err := b.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(v), nil
}

func (b *buffer) readRect() (rect, error) {
	v, err := b.read(8)
	if err != nil {
		return rect{}, err
	}
	return rect{
		top:    int16(binary.BigEndian.Uint16(v[0:])),
		left:   int16(binary.BigEndian.Uint16(v[2:])),
		bottom: int16(binary.BigEndian.Uint16(v[4:])),
		right:  int16(binary.BigEndian.Uint16(v[6:])),
	}, nil
}

// align advances to the next even offset; picture opcodes are word
// aligned.
func (b *buffer) align() {
	if b.pos%2 == 1 {
		b.pos++
	}
}
