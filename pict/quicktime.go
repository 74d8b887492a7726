package pict

import (
	"image/color"

	"github.com/pkg/errors"
)

const codecRaw = 0x72617720 // 'raw '

// readQuickTime handles the CompressedQuickTime opcode. The codec type is
// surfaced as the picture's format; only uncompressed payloads can be
// decoded, which is all the normalizer needs to rewrite them as standard
// pictures.
func (p *Pict) readQuickTime(b *buffer) error {
	size, err := b.readU32()
	if err != nil {
		return err
	}
	payload, err := b.read(int(size))
	if err != nil {
		return err
	}
	qb := &buffer{data: payload}

	if err := qb.skip(38); err != nil { // version + transform matrix
		return err
	}
	matteSize, err := qb.readU32()
	if err != nil {
		return err
	}
	if err := qb.skip(8 + 2 + 8 + 4); err != nil { // matteRect, mode, srcRect, accuracy
		return err
	}
	maskSize, err := qb.readU32()
	if err != nil {
		return err
	}
	if matteSize > 0 {
		return errors.New("pict: QuickTime mattes are not supported")
	}
	if err := qb.skip(int(maskSize)); err != nil {
		return err
	}

	// ImageDescription: size, codec, reserved, version info, quality,
	// dimensions, data size, frame count, name, depth, clut id.
	idStart := qb.pos
	idSize, err := qb.readU32()
	if err != nil {
		return err
	}
	if idSize < 86 {
		return errors.New("pict: short QuickTime image description")
	}
	codec, err := qb.readU32()
	if err != nil {
		return err
	}
	p.format = int(codec)
	if err := qb.skip(24); err != nil { // reserved, version, vendor, quality
		return err
	}
	width, err := qb.readU16()
	if err != nil {
		return err
	}
	height, err := qb.readU16()
	if err != nil {
		return err
	}
	if err := qb.skip(8); err != nil { // resolution
		return err
	}
	dataSize, err := qb.readU32()
	if err != nil {
		return err
	}
	if err := qb.skip(34); err != nil { // frame count, compressor name
		return err
	}
	depth, err := qb.readU16()
	if err != nil {
		return err
	}
	qb.pos = idStart + int(idSize)
	if qb.pos > len(qb.data) {
		return errShort
	}

	if codec != codecRaw {
		return errors.Errorf("pict: unsupported QuickTime codec %s", FormatName(int(codec)))
	}

	data, err := qb.read(int(dataSize))
	if err != nil {
		return err
	}
	return p.readRawCodec(data, int(width), int(height), int(depth))
}

// readRawCodec copies uncompressed QuickTime pixels into the surface.
func (p *Pict) readRawCodec(data []byte, width, height, depth int) error {
	var perPixel int
	switch depth {
	case 16, 24, 32:
		perPixel = depth / 8
	default:
		return errors.Errorf("pict: unsupported raw codec depth %d", depth)
	}
	if len(data) < width*height*perPixel {
		return errShort
	}
	for y := 0; y < height; y++ {
		row := data[y*width*perPixel:]
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch depth {
			case 16:
				v := uint16(row[x*2])<<8 | uint16(row[x*2+1])
				c = color.RGBA{scale5(uint8(v >> 10 & 0x1f)), scale5(uint8(v >> 5 & 0x1f)), scale5(uint8(v & 0x1f)), 0xff}
			case 24:
				c = color.RGBA{row[x*3], row[x*3+1], row[x*3+2], 0xff}
			case 32:
				c = color.RGBA{row[x*4+1], row[x*4+2], row[x*4+3], 0xff}
			}
			p.set(p.frame, x, y, c)
		}
	}
	return nil
}
