package rsrc

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Rez layout, as used by the Windows ports of classic resource files.
// Little-endian except for type codes, which stay four MacRoman bytes:
//
//	preamble:  'BRGR' signature, u32 version (1), u32 index entry count
//	index:     entries of {u32 offset, u32 size}; the last entry locates
//	           the resource map, the rest locate resource data blobs
//	map:       u32 flags (1), u32 type count, then per type a header of
//	           {code [4]byte, u32 resource count} followed by its entries
//	           of {u32 index entry, i32 id, name [256]byte NUL-padded}
const (
	rezSignature = "BRGR"
	rezVersion   = 1
	rezNameSize  = 256
)

var errRezCorrupt = errors.New("corrupt rez container")

func parseRez(data []byte) (*File, error) {
	if len(data) < 12 || string(data[:4]) != rezSignature {
		return nil, errRezCorrupt
	}
	if binary.LittleEndian.Uint32(data[4:]) != rezVersion {
		return nil, errors.New("unsupported rez version")
	}
	count := int(binary.LittleEndian.Uint32(data[8:]))
	if count < 1 || 12+count*8 > len(data) {
		return nil, errRezCorrupt
	}
	entry := func(i int) (int, int) {
		return int(binary.LittleEndian.Uint32(data[12+i*8:])),
			int(binary.LittleEndian.Uint32(data[12+i*8+4:]))
	}

	mapOff, mapLen := entry(count - 1)
	if mapOff < 0 || mapLen < 8 || mapOff+mapLen > len(data) {
		return nil, errRezCorrupt
	}
	m := data[mapOff : mapOff+mapLen]

	f := &File{format: FormatRez}
	numTypes := int(binary.LittleEndian.Uint32(m[4:]))
	pos := 8
	for i := 0; i < numTypes; i++ {
		if pos+8 > len(m) {
			return nil, errRezCorrupt
		}
		code := fromMacRoman(m[pos : pos+4])
		resources := int(binary.LittleEndian.Uint32(m[pos+4:]))
		pos += 8
		for j := 0; j < resources; j++ {
			if pos+8+rezNameSize > len(m) {
				return nil, errRezCorrupt
			}
			idx := int(binary.LittleEndian.Uint32(m[pos:]))
			id := int(int32(binary.LittleEndian.Uint32(m[pos+4:])))
			name := m[pos+8 : pos+8+rezNameSize]
			pos += 8 + rezNameSize

			if idx < 0 || idx >= count-1 {
				return nil, errRezCorrupt
			}
			off, size := entry(idx)
			if off < 0 || size < 0 || off+size > len(data) {
				return nil, errRezCorrupt
			}
			blob := make([]byte, size)
			copy(blob, data[off:off+size])

			end := bytes.IndexByte(name, 0)
			if end < 0 {
				end = len(name)
			}
			f.AddResource(code, id, fromMacRoman(name[:end]), blob)
		}
	}
	return f, nil
}

func (f *File) buildRez() ([]byte, error) {
	types := make([]*Type, 0, len(f.types))
	total := 0
	for _, t := range f.types {
		if t.Count() > 0 {
			types = append(types, t)
			total += t.Count()
		}
	}

	// Index entries precede the data; the map goes last.
	indexSize := (total + 1) * 8
	dataStart := 12 + indexSize

	index := new(bytes.Buffer)
	blobs := new(bytes.Buffer)
	m := new(bytes.Buffer)

	var u32 [4]byte
	putLE := func(buf *bytes.Buffer, v uint32) {
		binary.LittleEndian.PutUint32(u32[:], v)
		buf.Write(u32[:])
	}

	putLE(m, 1) // flags
	putLE(m, uint32(len(types)))
	idx := 0
	for _, t := range types {
		code := codeBytes(t.code)
		m.Write(code[:])
		putLE(m, uint32(t.Count()))
		for _, r := range t.resources {
			putLE(index, uint32(dataStart+blobs.Len()))
			putLE(index, uint32(len(r.data)))
			blobs.Write(r.data)

			putLE(m, uint32(idx))
			putLE(m, uint32(int32(r.id)))
			name := make([]byte, rezNameSize)
			encoded := toMacRoman(r.name)
			if len(encoded) >= rezNameSize {
				encoded = encoded[:rezNameSize-1]
			}
			copy(name, encoded)
			m.Write(name)
			idx++
		}
	}
	putLE(index, uint32(dataStart+blobs.Len()))
	putLE(index, uint32(m.Len()))

	out := new(bytes.Buffer)
	out.WriteString(rezSignature)
	putLE(out, rezVersion)
	putLE(out, uint32(total+1))
	out.Write(index.Bytes())
	out.Write(blobs.Bytes())
	out.Write(m.Bytes())
	return out.Bytes(), nil
}
