package rleduce

import (
	"github.com/andrews05/rleduce/dither"
	"github.com/andrews05/rleduce/pict"
	"github.com/andrews05/rleduce/rle"
	"github.com/andrews05/rleduce/rsrc"
)

// encodeSprite builds a rlëD from the sprite and mask PICTs a descriptor
// names and adds it to the container under the sprite's id, removing the
// two source PICTs on success. Slots with a non-positive sprite or mask
// id, and slots whose sprite or mask PICT is not in the container, are
// skipped without a report; other failures are reported against the
// descriptor and skipped.
func (o *Optimizer) encodeSprite(file *rsrc.File, res *rsrc.Resource, spriteID, maskID, frameWidth, frameHeight int16) bool {
	if spriteID <= 0 || maskID <= 0 {
		return false
	}
	spriteRes := file.Find(typePict, int(spriteID))
	maskRes := file.Find(typePict, int(maskID))
	if spriteRes == nil || maskRes == nil {
		return false
	}

	if frameWidth <= 0 || frameHeight <= 0 {
		o.errs.Printf("Invalid frame size in %s %d.", res.TypeCode(), res.ID())
		return false
	}

	spritePict, err := pict.Decode(spriteRes.Data())
	if err != nil {
		o.errs.Printf("Sprite PICT %d for %s %d: %v", spriteID, res.TypeCode(), res.ID(), err)
		return false
	}
	sprite := spritePict.ImageSurface()
	if sprite.Bounds().Dx()%int(frameWidth) != 0 || sprite.Bounds().Dy()%int(frameHeight) != 0 {
		o.errs.Printf("Sprite PICT %d for %s %d does not match frame size.", spriteID, res.TypeCode(), res.ID())
		return false
	}

	maskPict, err := pict.Decode(maskRes.Data())
	if err != nil {
		o.errs.Printf("Mask PICT %d for %s %d: %v", maskID, res.TypeCode(), res.ID(), err)
		return false
	}
	mask := maskPict.ImageSurface()
	if mask.Bounds().Dx() != sprite.Bounds().Dx() || mask.Bounds().Dy() != sprite.Bounds().Dy() {
		o.errs.Printf("Mask PICT %d for %s %d does not match sprite size.", maskID, res.TypeCode(), res.ID())
		return false
	}

	// Sprites already stored at 16-bit are on the RGB555 lattice and
	// need no diffusion.
	if o.opts.Dither && spritePict.Format() != 16 {
		dither.RGB555(sprite)
	}

	data, err := rle.Encode(sprite, mask, int(frameWidth), int(frameHeight))
	if err != nil {
		o.errs.Printf("%s %d: %v", res.TypeCode(), res.ID(), err)
		return false
	}

	if o.opts.Verbose {
		frames := sprite.Bounds().Dx() / int(frameWidth) * (sprite.Bounds().Dy() / int(frameHeight))
		o.logger.Printf("%7d  %7d  %6d  %6d  %6d  %11d  %9d  %9d",
			res.ID(), spriteID, frames, frameWidth, frameHeight,
			len(spriteRes.Data()), len(maskRes.Data()), len(data))
	}
	file.AddResource(typeRle, int(spriteID), spriteRes.Name(), data)

	spriteRes.Remove()
	maskRes.Remove()
	return true
}
