package dither

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func grey(v uint8) color.RGBA {
	return color.RGBA{v, v, v, 255}
}

// Scenario: (9,9,9) quantizes to (8,8,8) with error 1 per channel. The
// horizontal share rounds down to zero, the downward share of 1 falls off
// the bottom row, so the neighbour is untouched.
func TestHalfErrorDiscarded(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, grey(9))
	img.SetRGBA(1, 0, grey(255))

	RGB555(img)

	assert.Equal(t, grey(8), img.RGBAAt(0, 0))
	assert.Equal(t, grey(255), img.RGBAAt(1, 0))
}

func TestLatticeIsFixpoint(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for i, v := range []uint8{0, 33, 66, 99, 132, 165, 198, 231, 255} {
		img.SetRGBA(i%3, i/3, grey(v))
	}
	want := append([]byte{}, img.Pix...)

	RGB555(img)

	assert.Equal(t, want, img.Pix)
}

func TestHorizontalShareRoundsDown(t *testing.T) {
	// (15,15,15) leaves error 7; the right neighbour receives 7/2 = 3.
	// A neighbour of 4 lands on 7, which quantizes back to 0; a ceil
	// share of 4 would have produced 8.
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, grey(15))
	img.SetRGBA(1, 0, grey(4))

	RGB555(img)

	assert.Equal(t, grey(8), img.RGBAAt(0, 0))
	assert.Equal(t, grey(0), img.RGBAAt(1, 0))
}

func TestDownwardShareRoundsUp(t *testing.T) {
	// The downward share of error 7 is (7+1)/2 = 4. A pixel of 4 below
	// lands on 8, already on the lattice; a floor share of 3 would have
	// collapsed it to 0.
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.SetRGBA(0, 0, grey(15))
	img.SetRGBA(0, 1, grey(4))

	RGB555(img)

	assert.Equal(t, grey(8), img.RGBAAt(0, 0))
	assert.Equal(t, grey(8), img.RGBAAt(0, 1))
}

func TestSerpentineRowsDiffuseLeft(t *testing.T) {
	// Row 1 is traversed right to left, so (1,1) diffuses into (0,1):
	// 6 + 3 = 9 quantizes to 8. A left-to-right pass would have
	// processed (0,1) first and collapsed it to 0.
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, grey(0))
	img.SetRGBA(1, 0, grey(0))
	img.SetRGBA(0, 1, grey(6))
	img.SetRGBA(1, 1, grey(15))

	RGB555(img)

	assert.Equal(t, grey(8), img.RGBAAt(1, 1))
	assert.Equal(t, grey(8), img.RGBAAt(0, 1))
}

func TestNegativeErrorClamps(t *testing.T) {
	// 248 maps up to 255, error -7; a right neighbour of 2 would go
	// negative and must clamp to zero.
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, grey(248))
	img.SetRGBA(1, 0, grey(2))

	RGB555(img)

	assert.Equal(t, grey(255), img.RGBAAt(0, 0))
	assert.Equal(t, grey(0), img.RGBAAt(1, 0))
}

func TestAlphaUntouched(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{9, 123, 250, uint8(40 * (y*2 + x))})
		}
	}

	RGB555(img)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, uint8(40*(y*2+x)), img.RGBAAt(x, y).A)
		}
	}
}

func TestErrorHalvesAreExhaustive(t *testing.T) {
	// With both neighbours in range, the floor and ceil halves add back
	// up to the full error for every possible channel value.
	for v := 0; v < 256; v++ {
		e := v - int(rgb555(uint8(v)))
		assert.Equal(t, e, e>>1+(e+1)>>1, "value %d", v)
	}
}
