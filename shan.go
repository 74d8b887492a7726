package rleduce

import (
	"bytes"
	"encoding/binary"

	"github.com/andrews05/rleduce/rsrc"
	"github.com/pkg/errors"
)

// SubSprite names one sprite/mask PICT pair and its frame size within a
// shän record. A non-positive sprite or mask id marks the slot unused.
type SubSprite struct {
	SpriteID    int16
	MaskID      int16
	FrameWidth  int16
	FrameHeight int16
}

// Shan is a decoded shän sprite-index resource: up to six sub-sprites
// (base, alt, engine, light, weapon, shield) with per-record extras. The
// padding spans in the wire layout are opaque and skipped.
type Shan struct {
	Base         SubSprite
	BaseSetCount int16
	Alt          SubSprite
	AltSetCount  int16
	Engine       SubSprite
	Light        SubSprite
	Weapon       SubSprite
	FramesPer    int16
	Shield       SubSprite
}

// SubSprites returns the record's sub-sprites in encoding order.
func (s *Shan) SubSprites() []SubSprite {
	return []SubSprite{s.Base, s.Alt, s.Engine, s.Light, s.Weapon, s.Shield}
}

type shanWire struct {
	BaseSpriteID    int16
	BaseMaskID      int16
	BaseSetCount    int16
	BaseFrameWidth  int16
	BaseFrameHeight int16
	_               [2]byte
	AltSpriteID     int16
	AltMaskID       int16
	AltSetCount     int16
	AltFrameWidth   int16
	AltFrameHeight  int16
	EngineSpriteID  int16
	EngineMaskID    int16
	EngineWidth     int16
	EngineHeight    int16
	LightSpriteID   int16
	LightMaskID     int16
	LightWidth      int16
	LightHeight     int16
	WeaponSpriteID  int16
	WeaponMaskID    int16
	WeaponWidth     int16
	WeaponHeight    int16
	_               [6]byte
	FramesPer       int16
	_               [10]byte
	ShieldSpriteID  int16
	ShieldMaskID    int16
	ShieldWidth     int16
	ShieldHeight    int16
}

// ParseShan decodes a shän resource.
func ParseShan(data []byte) (*Shan, error) {
	var w shanWire
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &w); err != nil {
		return nil, errors.Wrap(err, "short shän resource")
	}
	return &Shan{
		Base:         SubSprite{w.BaseSpriteID, w.BaseMaskID, w.BaseFrameWidth, w.BaseFrameHeight},
		BaseSetCount: w.BaseSetCount,
		Alt:          SubSprite{w.AltSpriteID, w.AltMaskID, w.AltFrameWidth, w.AltFrameHeight},
		AltSetCount:  w.AltSetCount,
		Engine:       SubSprite{w.EngineSpriteID, w.EngineMaskID, w.EngineWidth, w.EngineHeight},
		Light:        SubSprite{w.LightSpriteID, w.LightMaskID, w.LightWidth, w.LightHeight},
		Weapon:       SubSprite{w.WeaponSpriteID, w.WeaponMaskID, w.WeaponWidth, w.WeaponHeight},
		FramesPer:    w.FramesPer,
		Shield:       SubSprite{w.ShieldSpriteID, w.ShieldMaskID, w.ShieldWidth, w.ShieldHeight},
	}, nil
}

func (o *Optimizer) processShans(file *rsrc.File) bool {
	t := file.TypeContainer(typeShan)
	if t == nil || t.Count() == 0 {
		return false
	}
	if o.opts.Verbose {
		o.logger.Printf("shän ID  rlëD ID  Frames   Width  Height  Sprite Size  Mask Size  rlëD Size")
	}
	encoded := 0
	for _, res := range t.Resources() {
		shan, err := ParseShan(res.Data())
		if err != nil {
			o.errs.Printf("%s %d: %v", res.TypeCode(), res.ID(), err)
			continue
		}
		for _, sub := range shan.SubSprites() {
			if o.encodeSprite(file, res, sub.SpriteID, sub.MaskID, sub.FrameWidth, sub.FrameHeight) {
				encoded++
			}
		}
	}
	o.logger.Printf("Encoded %d rlëDs from %d shäns.", encoded, t.Count())
	return encoded != 0
}
