package pict

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/pkg/errors"
)

const fixed72dpi = 0x00480000

func putU8(buf *bytes.Buffer, v uint8) { buf.WriteByte(v) }

func putU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putRect(buf *bytes.Buffer, r rect) {
	putU16(buf, uint16(r.top))
	putU16(buf, uint16(r.left))
	putU16(buf, uint16(r.bottom))
	putU16(buf, uint16(r.right))
}

// Data re-encodes the picture in a normalized form and updates the format
// tag to match the emitted pixel map. A 16-bit direct map is written when
// to16 is set; otherwise indexed sources become an 8-bit indexed map and
// everything else a 32-bit direct map.
func (p *Pict) Data(to16 bool) ([]byte, error) {
	b := p.surface.Bounds()
	if b.Dx() > 0x1fff || b.Dy() > 0x7fff {
		return nil, errors.New("pict: surface too large for a picture")
	}
	frame := rect{bottom: int16(b.Dy()), right: int16(b.Dx())}

	buf := new(bytes.Buffer)
	putU16(buf, 0) // low word of the final size, patched below
	putRect(buf, frame)
	putU16(buf, opVersion)
	buf.Write([]byte{0x02, 0xff})
	putU16(buf, opHeader)
	putU16(buf, 0xfffe) // extended version 2
	putU16(buf, 0)
	putU32(buf, fixed72dpi)
	putU32(buf, fixed72dpi)
	putRect(buf, frame)
	putU32(buf, 0)
	putU16(buf, opDefHilite)
	putU16(buf, opClip)
	putU16(buf, 10)
	putRect(buf, frame)

	switch {
	case to16:
		p.writeDirect16(buf, frame)
		p.format = 16
	case p.format <= 8:
		p.writeIndexed8(buf, frame)
		p.format = 8
	default:
		p.writeDirect32(buf, frame)
		p.format = 32
	}

	if buf.Len()%2 != 0 {
		putU8(buf, 0)
	}
	putU16(buf, opEndPic)

	data := buf.Bytes()
	binary.BigEndian.PutUint16(data[0:], uint16(len(data)))
	return data, nil
}

// writeRowPrefix emits a packed scanline with its length prefix: one byte
// for rows up to 250 bytes, two bytes beyond that.
func writeRowPrefix(buf *bytes.Buffer, rowBytes int, packed []byte) {
	if rowBytes > 250 {
		putU16(buf, uint16(len(packed)))
	} else {
		putU8(buf, uint8(len(packed)))
	}
	buf.Write(packed)
}

func (p *Pict) writePixMap(buf *bytes.Buffer, frame rect, rowBytes, packType, pixelType, pixelSize, cmpCount, cmpSize int) {
	putU16(buf, uint16(rowBytes)|0x8000)
	putRect(buf, frame)
	putU16(buf, 0) // pmVersion
	putU16(buf, uint16(packType))
	putU32(buf, 0) // packSize
	putU32(buf, fixed72dpi)
	putU32(buf, fixed72dpi)
	putU16(buf, uint16(pixelType))
	putU16(buf, uint16(pixelSize))
	putU16(buf, uint16(cmpCount))
	putU16(buf, uint16(cmpSize))
	putU32(buf, 0) // planeBytes
	putU32(buf, 0) // pmTable
	putU32(buf, 0) // pmReserved
}

func (p *Pict) writeDirect16(buf *bytes.Buffer, frame rect) {
	b := p.surface.Bounds()
	w, h := frame.width(), frame.height()
	rowBytes := w * 2

	putU16(buf, opDirectBits)
	putU32(buf, 0x000000ff) // baseAddr
	p.writePixMap(buf, frame, rowBytes, 3, 16, 16, 3, 5)
	putRect(buf, frame)
	putRect(buf, frame)
	putU16(buf, 0) // srcCopy

	words := make([]uint16, w)
	var packed []byte
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := p.surface.RGBAAt(b.Min.X+x, b.Min.Y+y)
			words[x] = uint16(c.R>>3)<<10 | uint16(c.G>>3)<<5 | uint16(c.B>>3)
		}
		if rowBytes < 8 {
			for _, v := range words {
				putU16(buf, v)
			}
			continue
		}
		packed = packWords(packed[:0], words)
		writeRowPrefix(buf, rowBytes, packed)
	}
}

func (p *Pict) writeDirect32(buf *bytes.Buffer, frame rect) {
	b := p.surface.Bounds()
	w, h := frame.width(), frame.height()
	rowBytes := w * 4

	putU16(buf, opDirectBits)
	putU32(buf, 0x000000ff)
	p.writePixMap(buf, frame, rowBytes, 4, 16, 32, 3, 8)
	putRect(buf, frame)
	putRect(buf, frame)
	putU16(buf, 0)

	plane := make([]byte, w*3)
	var packed []byte
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := p.surface.RGBAAt(b.Min.X+x, b.Min.Y+y)
			plane[x] = c.R
			plane[w+x] = c.G
			plane[w*2+x] = c.B
		}
		if rowBytes < 8 {
			buf.Write(plane)
			continue
		}
		packed = packBits(packed[:0], plane)
		writeRowPrefix(buf, rowBytes, packed)
	}
}

func (p *Pict) writeIndexed8(buf *bytes.Buffer, frame rect) {
	b := p.surface.Bounds()
	w, h := frame.width(), frame.height()
	rowBytes := w

	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, 256), p.surface)
	pm := image.NewPaletted(b, pal)
	draw.Draw(pm, b, p.surface, b.Min, draw.Src)

	putU16(buf, opPackBitsRect)
	p.writePixMap(buf, frame, rowBytes, 0, 0, 8, 1, 8)

	putU32(buf, 0) // ctSeed
	putU16(buf, 0) // ctFlags
	putU16(buf, uint16(len(pal)-1))
	for i, c := range pal {
		r, g, bl, _ := c.RGBA()
		putU16(buf, uint16(i))
		putU16(buf, uint16(r))
		putU16(buf, uint16(g))
		putU16(buf, uint16(bl))
	}

	putRect(buf, frame)
	putRect(buf, frame)
	putU16(buf, 0)

	var packed []byte
	for y := 0; y < h; y++ {
		row := pm.Pix[y*pm.Stride : y*pm.Stride+w]
		if rowBytes < 8 {
			buf.Write(row)
			continue
		}
		packed = packBits(packed[:0], row)
		writeRowPrefix(buf, rowBytes, packed)
	}
}
