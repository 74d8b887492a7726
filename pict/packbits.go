package pict

import "github.com/pkg/errors"

// QuickDraw PackBits: a control byte n <= 127 is followed by n+1 literal
// units, n >= 129 repeats the next unit 257-n times, 128 is skipped. The
// unit is one byte for indexed rows and one 16-bit word for direct
// 16-bit rows.

var errPack = errors.New("pict: malformed packed scanline")

func packBits(dst, src []byte) []byte {
	for i := 0; i < len(src); {
		j := i + 1
		for j < len(src) && src[j] == src[i] && j-i < 128 {
			j++
		}
		if j-i >= 3 {
			dst = append(dst, byte(257-(j-i)), src[i])
			i = j
			continue
		}
		j = i
		for j < len(src) && j-i < 128 {
			if j+2 < len(src) && src[j] == src[j+1] && src[j+1] == src[j+2] {
				break
			}
			j++
		}
		dst = append(dst, byte(j-i-1))
		dst = append(dst, src[i:j]...)
		i = j
	}
	return dst
}

func packWords(dst []byte, src []uint16) []byte {
	for i := 0; i < len(src); {
		j := i + 1
		for j < len(src) && src[j] == src[i] && j-i < 128 {
			j++
		}
		if j-i >= 3 {
			dst = append(dst, byte(257-(j-i)), byte(src[i]>>8), byte(src[i]))
			i = j
			continue
		}
		j = i
		for j < len(src) && j-i < 128 {
			if j+2 < len(src) && src[j] == src[j+1] && src[j+1] == src[j+2] {
				break
			}
			j++
		}
		dst = append(dst, byte(j-i-1))
		for ; i < j; i++ {
			dst = append(dst, byte(src[i]>>8), byte(src[i]))
		}
	}
	return dst
}

// unpackBytes expands src until at least size bytes are produced; some
// encoders pack padding past the pixel data, which is dropped.
func unpackBytes(src []byte, size int) ([]byte, error) {
	dst := make([]byte, 0, size)
	for i := 0; i < len(src); {
		c := src[i]
		i++
		switch {
		case c > 128:
			if i >= len(src) {
				return nil, errPack
			}
			for n := 257 - int(c); n > 0; n-- {
				dst = append(dst, src[i])
			}
			i++
		case c < 128:
			n := int(c) + 1
			if i+n > len(src) {
				return nil, errPack
			}
			dst = append(dst, src[i:i+n]...)
			i += n
		}
	}
	if len(dst) < size {
		return nil, errPack
	}
	return dst[:size], nil
}

// unpackWords expands src as 16-bit units into width*2 big-endian bytes.
func unpackWords(src []byte, width int) ([]byte, error) {
	dst := make([]byte, 0, width*2)
	for i := 0; i < len(src); {
		c := src[i]
		i++
		switch {
		case c > 128:
			if i+2 > len(src) {
				return nil, errPack
			}
			for n := 257 - int(c); n > 0; n-- {
				dst = append(dst, src[i], src[i+1])
			}
			i += 2
		case c < 128:
			n := (int(c) + 1) * 2
			if i+n > len(src) {
				return nil, errPack
			}
			dst = append(dst, src[i:i+n]...)
			i += n
		}
	}
	if len(dst) < width*2 {
		return nil, errPack
	}
	return dst[:width*2], nil
}
