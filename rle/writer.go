package rle

import (
	"bytes"
	"encoding/binary"
)

func writeWord(buf *bytes.Buffer, word uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], word)
	buf.Write(b[:])
}

func writeShort(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

// Rewrite re-emits a rlëD stream in its tightest form. Runs of blank
// lines are held back and only written out when a later non-blank line
// requires them, so trailing blanks in a frame are dropped entirely.
// When trim is non-zero the first trim line records of every frame are
// skipped and the frame height is reduced by twice that amount; Trim
// guarantees the skipped records are blank.
func Rewrite(data []byte, trim int) ([]byte, error) {
	r, err := NewReader(data)
	if err != nil {
		return nil, err
	}
	h := r.Header()

	buf := new(bytes.Buffer)
	buf.Grow(len(data))
	writeShort(buf, uint16(h.Width))
	writeShort(buf, uint16(h.Height-trim*2))
	buf.Write(h.meta[:])

	for i := 0; i < h.FrameCount; i++ {
		skip := trim
		blank := 0
		for {
			rec, ok, err := r.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			if skip > 0 {
				skip--
				continue
			}
			if rec.Blank() {
				blank++
				continue
			}
			for ; blank > 0; blank-- {
				writeWord(buf, packOp(OpLineStart, 0))
			}
			writeWord(buf, packOp(OpLineStart, uint32(len(rec.Data))))
			buf.Write(rec.Data)
		}
		writeWord(buf, 0)
	}
	return buf.Bytes(), nil
}
