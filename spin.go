package rleduce

import (
	"bytes"
	"encoding/binary"

	"github.com/andrews05/rleduce/rsrc"
	"github.com/pkg/errors"
)

// Spin is the wire layout of a spïn sprite-index resource: six big-endian
// 16-bit words naming the sprite and mask PICTs, the frame size and the
// grid size.
type Spin struct {
	SpriteID    int16
	MaskID      int16
	FrameWidth  int16
	FrameHeight int16
	GridWidth   int16
	GridHeight  int16
}

// ParseSpin decodes a spïn resource.
func ParseSpin(data []byte) (Spin, error) {
	var s Spin
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &s); err != nil {
		return Spin{}, errors.Wrap(err, "short spïn resource")
	}
	return s, nil
}

func (o *Optimizer) processSpins(file *rsrc.File) bool {
	t := file.TypeContainer(typeSpin)
	if t == nil || t.Count() == 0 {
		return false
	}
	if o.opts.Verbose {
		o.logger.Printf("spïn ID  rlëD ID  Frames   Width  Height  Sprite Size  Mask Size  rlëD Size")
	}
	encoded := 0
	for _, res := range t.Resources() {
		spin, err := ParseSpin(res.Data())
		if err != nil {
			o.errs.Printf("%s %d: %v", res.TypeCode(), res.ID(), err)
			continue
		}
		if spin.GridWidth <= 0 || spin.GridHeight <= 0 {
			o.errs.Printf("Invalid grid size in %s %d.", res.TypeCode(), res.ID())
			continue
		}
		if o.encodeSprite(file, res, spin.SpriteID, spin.MaskID, spin.FrameWidth, spin.FrameHeight) {
			encoded++
		}
	}
	o.logger.Printf("Encoded %d rlëDs from %d spïns.", encoded, t.Count())
	return encoded != 0
}

func (o *Optimizer) processSprites(file *rsrc.File) bool {
	changed := o.processSpins(file)
	return o.processShans(file) || changed
}
