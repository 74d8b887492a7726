package rle

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transparent = int32(-1)

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
)

// decodeFrames expands an encoded sprite into per-frame pixel grids of
// RGB555 values, with transparent pixels marked -1. It understands the
// full opcode set the encoder emits.
func decodeFrames(t *testing.T, data []byte) [][][]int32 {
	t.Helper()
	r, err := NewReader(data)
	require.NoError(t, err)
	h := r.Header()
	frames := make([][][]int32, h.FrameCount)
	for i := range frames {
		var lines [][]int32
		for {
			rec, ok, err := r.Next()
			require.NoError(t, err)
			if !ok {
				break
			}
			row := make([]int32, h.Width)
			for j := range row {
				row[j] = transparent
			}
			pos, x := 0, 0
			for pos < len(rec.Data) {
				op, count := unpackOp(binary.BigEndian.Uint32(rec.Data[pos:]))
				pos += 4
				switch op {
				case OpTransparentRun:
					x += int(count) / 2
				case OpPixelRun:
					v := int32(binary.BigEndian.Uint16(rec.Data[pos:]))
					pos += 4
					for n := int(count) / 2; n > 0; n-- {
						row[x] = v
						x++
					}
				case OpPixelData:
					for n := 0; n < int(count)/2; n++ {
						row[x] = int32(binary.BigEndian.Uint16(rec.Data[pos+n*2:]))
						x++
					}
					pos = (pos + int(count) + 3) &^ 3
				default:
					t.Fatalf("unexpected opcode %d inside line data", op)
				}
			}
			lines = append(lines, row)
		}
		for len(lines) < h.Height {
			row := make([]int32, h.Width)
			for j := range row {
				row[j] = transparent
			}
			lines = append(lines, row)
		}
		frames[i] = lines
	}
	return frames
}

func TestEncodeValidation(t *testing.T) {
	sprite := image.NewRGBA(image.Rect(0, 0, 4, 4))
	mask := image.NewRGBA(image.Rect(0, 0, 4, 4))

	_, err := Encode(sprite, mask, 0, 2)
	assert.ErrorIs(t, err, ErrFrameSize)

	_, err = Encode(sprite, image.NewRGBA(image.Rect(0, 0, 2, 4)), 2, 2)
	assert.ErrorIs(t, err, ErrMaskSize)

	_, err = Encode(sprite, mask, 3, 2)
	assert.ErrorIs(t, err, ErrSpriteSize)
}

// Scenario: a solid green 4x4 sprite with a solid white mask and 2x2
// frames encodes to four identical all-green frames.
func TestEncodeGrid(t *testing.T) {
	sprite := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill(sprite, green)
	mask := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill(mask, white)

	data, err := Encode(sprite, mask, 2, 2)
	require.NoError(t, err)

	r, err := NewReader(data)
	require.NoError(t, err)
	h := r.Header()
	assert.Equal(t, 2, h.Width)
	assert.Equal(t, 2, h.Height)
	assert.Equal(t, 4, h.FrameCount)

	g := int32(rgb555(green))
	for _, frame := range decodeFrames(t, data) {
		assert.Equal(t, [][]int32{{g, g}, {g, g}}, frame)
	}
}

// Scenario: a black mask pixel cuts the sprite pixel out; non-black mask
// pixels leave it untouched.
func TestEncodeMaskCutout(t *testing.T) {
	sprite := image.NewRGBA(image.Rect(0, 0, 2, 2))
	fill(sprite, red)
	mask := image.NewRGBA(image.Rect(0, 0, 2, 2))
	mask.SetRGBA(0, 0, black)
	mask.SetRGBA(1, 0, white)
	mask.SetRGBA(0, 1, white)
	mask.SetRGBA(1, 1, black)

	data, err := Encode(sprite, mask, 2, 2)
	require.NoError(t, err)

	v := int32(rgb555(red))
	frames := decodeFrames(t, data)
	require.Len(t, frames, 1)
	assert.Equal(t, [][]int32{{transparent, v}, {v, transparent}}, frames[0])

	// The masked sprite pixels were set fully transparent in place.
	assert.Equal(t, color.RGBA{}, sprite.RGBAAt(0, 0))
	assert.Equal(t, red, sprite.RGBAAt(1, 0))
}

func TestEncodeGreyMaskKeepsPixels(t *testing.T) {
	sprite := image.NewRGBA(image.Rect(0, 0, 1, 1))
	fill(sprite, red)
	mask := image.NewRGBA(image.Rect(0, 0, 1, 1))
	fill(mask, color.RGBA{1, 1, 1, 255})

	data, err := Encode(sprite, mask, 1, 1)
	require.NoError(t, err)
	frames := decodeFrames(t, data)
	assert.Equal(t, int32(rgb555(red)), frames[0][0][0])
}

func TestEncodeFrameShape(t *testing.T) {
	sprite := image.NewRGBA(image.Rect(0, 0, 6, 4))
	fill(sprite, white)
	// Distinct corner pixel per frame to verify row-major frame order.
	sprite.SetRGBA(3, 0, red)
	sprite.SetRGBA(0, 2, green)
	mask := image.NewRGBA(image.Rect(0, 0, 6, 4))
	fill(mask, white)

	data, err := Encode(sprite, mask, 3, 2)
	require.NoError(t, err)

	r, _ := NewReader(data)
	h := r.Header()
	assert.Equal(t, 3, h.Width)
	assert.Equal(t, 2, h.Height)
	assert.Equal(t, 4, h.FrameCount)

	frames := decodeFrames(t, data)
	assert.Equal(t, int32(rgb555(red)), frames[1][0][0])
	assert.Equal(t, int32(rgb555(green)), frames[2][0][0])
}

func TestEncodePixelRuns(t *testing.T) {
	// A 12-wide line of one colour compresses to a single pixel_run.
	sprite := image.NewRGBA(image.Rect(0, 0, 12, 1))
	fill(sprite, green)
	mask := image.NewRGBA(image.Rect(0, 0, 12, 1))
	fill(mask, white)

	data, err := Encode(sprite, mask, 12, 1)
	require.NoError(t, err)

	r, _ := NewReader(data)
	rec, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	// One run opcode plus its doubled pixel word.
	assert.Len(t, rec.Data, 8)
	op, count := unpackOp(binary.BigEndian.Uint32(rec.Data))
	assert.Equal(t, OpPixelRun, op)
	assert.Equal(t, uint32(24), count)
}

func TestEncodeRoundTripsThroughRewrite(t *testing.T) {
	sprite := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill(sprite, green)
	sprite.SetRGBA(1, 1, red)
	sprite.SetRGBA(2, 3, white)
	mask := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill(mask, white)

	data, err := Encode(sprite, mask, 2, 2)
	require.NoError(t, err)

	// Fully opaque sprites have no blank lines, so a rewrite without
	// trimming reproduces the stream byte for byte.
	out, err := Rewrite(data, 0)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}
