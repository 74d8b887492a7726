/*
Package dither reduces RGBA surfaces to the RGB555 lattice using the
QuickDraw error diffusion scheme: half the quantization error is diffused
right on even rows and left on odd rows, the remainder is diffused down.
*/
package dither

import (
	"image"
	"image/color"
)

// rgb555 maps an 8-bit channel to its 5-bit approximation and back,
// scaling the top five bits across the full range.
func rgb555(c uint8) uint8 {
	return c&0xf8 | c>>5
}

// RGB555 dithers img in place. Rows are traversed in a serpentine order
// and alpha is never modified.
func RGB555(img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		even := (y-b.Min.Y)%2 == 0
		for w := 0; w < b.Dx(); w++ {
			x := b.Min.X + w
			if !even {
				x = b.Max.X - w - 1
			}
			c := img.RGBAAt(x, y)
			n := color.RGBA{rgb555(c.R), rgb555(c.G), rgb555(c.B), c.A}
			errs := [3]int{int(c.R) - int(n.R), int(c.G) - int(n.G), int(c.B) - int(n.B)}
			if errs == [3]int{} {
				continue
			}
			img.SetRGBA(x, y, n)
			if even && x+1 < b.Max.X {
				applyError(img, x+1, y, errs, false)
			} else if !even && x > b.Min.X {
				applyError(img, x-1, y, errs, false)
			}
			if y+1 < b.Max.Y {
				applyError(img, x, y+1, errs, true)
			}
		}
	}
}

// applyError adds half of errs to the pixel at (x, y). The downward share
// rounds up where the horizontal share rounds down, so an odd error is
// fully accounted for across its two recipients.
func applyError(img *image.RGBA, x, y int, errs [3]int, up bool) {
	add := 0
	if up {
		add = 1
	}
	c := img.RGBAAt(x, y)
	c.R = clamp(int(c.R) + (errs[0]+add)>>1)
	c.G = clamp(int(c.G) + (errs[1]+add)>>1)
	c.B = clamp(int(c.B) + (errs[2]+add)>>1)
	img.SetRGBA(x, y, c)
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
