package pict

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Decode parses a version 2 picture resource. The 512-byte file header
// of disk-based pictures must already have been stripped; resources never
// carry it.
func Decode(data []byte) (*Pict, error) {
	b := &buffer{data: data}
	if err := b.skip(2); err != nil { // historic low word of the size
		return nil, err
	}
	frame, err := b.readRect()
	if err != nil {
		return nil, err
	}
	if frame.width() <= 0 || frame.height() <= 0 {
		return nil, errors.New("pict: empty picture frame")
	}
	p := &Pict{
		frame:   frame,
		surface: image.NewRGBA(image.Rect(0, 0, frame.width(), frame.height())),
	}

	for {
		b.align()
		op, err := b.readU16()
		if err != nil {
			return nil, err
		}
		switch op {
		case opNop, opDefHilite:
		case opVersion:
			v, err := b.readU8()
			if err != nil {
				return nil, err
			}
			if v != 2 {
				return nil, errors.Errorf("pict: unsupported picture version %d", v)
			}
			if err := b.skip(1); err != nil {
				return nil, err
			}
		case opHeader:
			err = b.skip(24)
		case opClip:
			var size uint16
			if size, err = b.readU16(); err == nil {
				err = b.skip(int(size) - 2)
			}
		case opOrigin:
			err = b.skip(4)
		case opShortComment:
			err = b.skip(2)
		case opLongComment:
			if err = b.skip(2); err == nil {
				var size uint16
				if size, err = b.readU16(); err == nil {
					err = b.skip(int(size))
				}
			}
		case opBitsRect, opPackBitsRect:
			err = p.readIndexed(b, op == opPackBitsRect)
		case opDirectBits:
			err = p.readDirect(b)
		case opCompressedQT:
			err = p.readQuickTime(b)
		case opUncompressedQT:
			err = errors.New("pict: uncompressed QuickTime pictures are not supported")
		case opEndPic:
			return p, nil
		default:
			return nil, errors.Errorf("pict: unsupported opcode 0x%04x", op)
		}
		if err != nil {
			return nil, err
		}
	}
}

type pixMap struct {
	rowBytes  int
	bounds    rect
	packType  int
	pixelSize int
	cmpCount  int
	pixmap    bool // high bit of rowBytes; clear means an old-style bitmap
}

func (b *buffer) readPixMap() (pixMap, error) {
	var pm pixMap
	rb, err := b.readU16()
	if err != nil {
		return pm, err
	}
	pm.rowBytes = int(rb & 0x7fff)
	pm.pixmap = rb&0x8000 != 0
	if pm.bounds, err = b.readRect(); err != nil {
		return pm, err
	}
	if !pm.pixmap {
		pm.pixelSize = 1
		pm.cmpCount = 1
		return pm, nil
	}
	if err = b.skip(2); err != nil { // pmVersion
		return pm, err
	}
	packType, err := b.readU16()
	if err != nil {
		return pm, err
	}
	pm.packType = int(packType)
	if err = b.skip(12); err != nil { // packSize, hRes, vRes
		return pm, err
	}
	if err = b.skip(2); err != nil { // pixelType
		return pm, err
	}
	pixelSize, err := b.readU16()
	if err != nil {
		return pm, err
	}
	pm.pixelSize = int(pixelSize)
	cmpCount, err := b.readU16()
	if err != nil {
		return pm, err
	}
	pm.cmpCount = int(cmpCount)
	// cmpSize, planeBytes, pmTable, pmReserved
	return pm, b.skip(14)
}

func (b *buffer) readColorTable() ([]color.RGBA, error) {
	if err := b.skip(4); err != nil { // ctSeed
		return nil, err
	}
	flags, err := b.readU16()
	if err != nil {
		return nil, err
	}
	size, err := b.readU16()
	if err != nil {
		return nil, err
	}
	count := int(size) + 1
	if count > 256 {
		return nil, errors.Errorf("pict: color table too large (%d entries)", count)
	}
	table := make([]color.RGBA, count)
	for i := range table {
		value, err := b.readU16()
		if err != nil {
			return nil, err
		}
		v, err := b.read(6)
		if err != nil {
			return nil, err
		}
		idx := int(value)
		// Device color tables leave the value field meaningless.
		if flags&0x8000 != 0 || idx >= count {
			idx = i
		}
		table[idx] = color.RGBA{v[0], v[2], v[4], 0xff}
	}
	return table, nil
}

// readRow returns one unpacked scanline of unpacked bytes. Rows shorter
// than eight bytes are never packed; larger rows carry a one or two byte
// length prefix depending on the row size.
func readRow(b *buffer, pm pixMap, unpacked int) ([]byte, error) {
	if pm.packType == 1 || pm.rowBytes < 8 {
		return b.read(unpacked)
	}
	var count int
	if pm.rowBytes > 250 {
		v, err := b.readU16()
		if err != nil {
			return nil, err
		}
		count = int(v)
	} else {
		v, err := b.readU8()
		if err != nil {
			return nil, err
		}
		count = int(v)
	}
	src, err := b.read(count)
	if err != nil {
		return nil, err
	}
	return unpackBytes(src, unpacked)
}

// readRow16 returns one scanline of 16-bit pixels as bytes. Pack type 3
// applies PackBits over 16-bit units rather than bytes.
func readRow16(b *buffer, pm pixMap, width int) ([]byte, error) {
	if pm.packType == 1 || pm.rowBytes < 8 {
		return b.read(width * 2)
	}
	var count int
	if pm.rowBytes > 250 {
		v, err := b.readU16()
		if err != nil {
			return nil, err
		}
		count = int(v)
	} else {
		v, err := b.readU8()
		if err != nil {
			return nil, err
		}
		count = int(v)
	}
	src, err := b.read(count)
	if err != nil {
		return nil, err
	}
	return unpackWords(src, width)
}

// readIndexed handles BitsRect and PackBitsRect opcodes: indexed pixel
// maps of 1, 2, 4 or 8 bits per pixel, or old-style bitmaps.
func (p *Pict) readIndexed(b *buffer, packed bool) error {
	pm, err := b.readPixMap()
	if err != nil {
		return err
	}
	var table []color.RGBA
	if pm.pixmap {
		if table, err = b.readColorTable(); err != nil {
			return err
		}
	} else {
		table = []color.RGBA{{0xff, 0xff, 0xff, 0xff}, {0x00, 0x00, 0x00, 0xff}}
	}
	if _, err = b.readRect(); err != nil { // srcRect
		return err
	}
	dst, err := b.readRect()
	if err != nil {
		return err
	}
	if err = b.skip(2); err != nil { // transfer mode
		return err
	}

	switch pm.pixelSize {
	case 1, 2, 4, 8:
	default:
		return errors.Errorf("pict: unsupported indexed depth %d", pm.pixelSize)
	}
	if !packed {
		pm.packType = 1
	}
	perPixel := 8 / pm.pixelSize
	if pm.rowBytes*perPixel < pm.bounds.width() {
		return errors.New("pict: row size too small for pixel map bounds")
	}
	for y := 0; y < pm.bounds.height(); y++ {
		row, err := readRow(b, pm, pm.rowBytes)
		if err != nil {
			return err
		}
		for x := 0; x < pm.bounds.width(); x++ {
			shift := uint(8 - pm.pixelSize - x%perPixel*pm.pixelSize)
			idx := int(row[x/perPixel]>>shift) & (1<<uint(pm.pixelSize) - 1)
			if idx >= len(table) {
				return errors.Errorf("pict: pixel index %d outside color table", idx)
			}
			p.set(dst, x, y, table[idx])
		}
	}
	p.format = pm.pixelSize
	return nil
}

// readDirect handles the DirectBitsRect opcode: 16-bit RGB555 rows packed
// as words, or 32-bit rows packed per component plane.
func (p *Pict) readDirect(b *buffer) error {
	if err := b.skip(4); err != nil { // baseAddr
		return err
	}
	pm, err := b.readPixMap()
	if err != nil {
		return err
	}
	if _, err = b.readRect(); err != nil { // srcRect
		return err
	}
	dst, err := b.readRect()
	if err != nil {
		return err
	}
	if err = b.skip(2); err != nil { // transfer mode
		return err
	}

	width := pm.bounds.width()
	switch pm.pixelSize {
	case 16:
		if pm.packType != 1 && pm.packType != 3 {
			return errors.Errorf("pict: unsupported 16-bit pack type %d", pm.packType)
		}
		for y := 0; y < pm.bounds.height(); y++ {
			row, err := readRow16(b, pm, width)
			if err != nil {
				return err
			}
			for x := 0; x < width; x++ {
				v := uint16(row[x*2])<<8 | uint16(row[x*2+1])
				p.set(dst, x, y, color.RGBA{
					scale5(uint8(v >> 10 & 0x1f)),
					scale5(uint8(v >> 5 & 0x1f)),
					scale5(uint8(v & 0x1f)),
					0xff,
				})
			}
		}
		p.format = 16
	case 32:
		if pm.packType != 1 && pm.packType != 4 {
			return errors.Errorf("pict: unsupported 32-bit pack type %d", pm.packType)
		}
		if pm.cmpCount != 3 && pm.cmpCount != 4 {
			return errors.Errorf("pict: unsupported component count %d", pm.cmpCount)
		}
		if pm.packType == 1 && pm.rowBytes < width*4 {
			return errors.New("pict: row size too small for pixel map bounds")
		}
		for y := 0; y < pm.bounds.height(); y++ {
			if pm.packType == 1 {
				row, err := b.read(pm.rowBytes)
				if err != nil {
					return err
				}
				for x := 0; x < width; x++ {
					p.set(dst, x, y, color.RGBA{row[x*4+1], row[x*4+2], row[x*4+3], 0xff})
				}
				continue
			}
			row, err := readRow(b, pm, width*pm.cmpCount)
			if err != nil {
				return err
			}
			// Planar order is alpha (when present), red, green, blue.
			off := 0
			alpha := []byte(nil)
			if pm.cmpCount == 4 {
				alpha = row[:width]
				off = width
			}
			for x := 0; x < width; x++ {
				a := uint8(0xff)
				if alpha != nil {
					a = alpha[x]
				}
				p.set(dst, x, y, color.RGBA{row[off+x], row[off+width+x], row[off+width*2+x], a})
			}
		}
		p.format = 32
	default:
		return errors.Errorf("pict: unsupported direct depth %d", pm.pixelSize)
	}
	return nil
}

// set writes a decoded pixel through the destination rect into the
// surface, dropping pixels that land outside the frame.
func (p *Pict) set(dst rect, x, y int, c color.RGBA) {
	sx := int(dst.left) - int(p.frame.left) + x
	sy := int(dst.top) - int(p.frame.top) + y
	if sx < 0 || sy < 0 || sx >= p.surface.Rect.Dx() || sy >= p.surface.Rect.Dy() {
		return
	}
	p.surface.SetRGBA(sx, sy, c)
}

func scale5(c uint8) uint8 {
	return c<<3 | c>>2
}
