package rle

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	errShortHeader = errors.New("rle: data too short for header")
	errShortLine   = errors.New("rle: truncated line data")
	errShortFrame  = errors.New("rle: missing frame terminator")
)

// Header holds the fixed rlëD preamble. The twelve bytes following the
// frame dimensions carry the frame count plus opaque metadata and are
// preserved verbatim when a sprite is rewritten.
type Header struct {
	Width      int
	Height     int
	FrameCount int
	meta       [12]byte
}

// Line is a single line record. Data is a view into the source stream and
// is opaque to the rewriter.
type Line struct {
	Data []byte
}

// Blank reports whether the line holds no pixel data.
func (l Line) Blank() bool { return len(l.Data) == 0 }

// Reader streams line records out of a complete rlëD resource.
type Reader struct {
	data []byte
	pos  int
	hdr  Header
}

// NewReader parses the header of data and returns a reader positioned at
// the first frame.
func NewReader(data []byte) (*Reader, error) {
	if len(data) < headerSize {
		return nil, errShortHeader
	}
	r := &Reader{data: data, pos: headerSize}
	r.hdr.Width = int(binary.BigEndian.Uint16(data[0:]))
	r.hdr.Height = int(binary.BigEndian.Uint16(data[2:]))
	r.hdr.FrameCount = int(binary.BigEndian.Uint16(data[8:]))
	copy(r.hdr.meta[:], data[4:headerSize])
	return r, nil
}

// Header returns the parsed rlëD header.
func (r *Reader) Header() Header { return r.hdr }

// Next returns the next line record of the current frame. It returns
// ok=false once the frame terminator is reached; the reader is then
// positioned at the start of the following frame. Opcodes outside the
// known range act as terminators, matching the historic encoders which
// mark frame end with a zero word.
func (r *Reader) Next() (Line, bool, error) {
	if r.pos+4 > len(r.data) {
		return Line{}, false, errShortFrame
	}
	op, count := unpackOp(binary.BigEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	if op != OpLineStart {
		return Line{}, false, nil
	}
	if r.pos+int(count) > len(r.data) {
		return Line{}, false, errShortLine
	}
	line := Line{Data: r.data[r.pos : r.pos+int(count)]}
	r.pos += int(count)
	return line, true, nil
}
