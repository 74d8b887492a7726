package rsrc

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Classic resource fork layout: a 16-byte header locating the data and
// map sections, resource data as length-prefixed blobs, and a map holding
// the type list, reference lists and name list. All fields big-endian.

const (
	forkHeaderSize = 16
	forkDataStart  = 256 // header plus the reserved system area
	// Offsets within the map: 16 reserved bytes, a handle, a file
	// reference and the fork attributes precede the two list offsets.
	mapTypeListField = 24
	mapNameListField = 26
	typeListStart    = 28
)

var errForkCorrupt = errors.New("corrupt resource fork")

func parseFork(data []byte) (*File, error) {
	if len(data) < forkHeaderSize {
		return nil, errForkCorrupt
	}
	dataOff := int(binary.BigEndian.Uint32(data[0:]))
	mapOff := int(binary.BigEndian.Uint32(data[4:]))
	dataLen := int(binary.BigEndian.Uint32(data[8:]))
	mapLen := int(binary.BigEndian.Uint32(data[12:]))
	if dataOff < 0 || dataLen < 0 || dataOff+dataLen > len(data) ||
		mapOff < 0 || mapLen < 30 || mapOff+mapLen > len(data) {
		return nil, errForkCorrupt
	}
	section := data[dataOff : dataOff+dataLen]
	m := data[mapOff : mapOff+mapLen]

	typeList := int(binary.BigEndian.Uint16(m[mapTypeListField:]))
	nameList := int(binary.BigEndian.Uint16(m[mapNameListField:]))
	if typeList+2 > len(m) {
		return nil, errForkCorrupt
	}

	f := New()
	numTypes := int(int16(binary.BigEndian.Uint16(m[typeList:]))) + 1
	for i := 0; i < numTypes; i++ {
		entry := typeList + 2 + i*8
		if entry+8 > len(m) {
			return nil, errForkCorrupt
		}
		code := fromMacRoman(m[entry : entry+4])
		count := int(binary.BigEndian.Uint16(m[entry+4:])) + 1
		refList := typeList + int(binary.BigEndian.Uint16(m[entry+6:]))

		for j := 0; j < count; j++ {
			ref := refList + j*12
			if ref+12 > len(m) {
				return nil, errForkCorrupt
			}
			id := int(int16(binary.BigEndian.Uint16(m[ref:])))
			nameOff := int(binary.BigEndian.Uint16(m[ref+2:]))
			off := int(binary.BigEndian.Uint32(m[ref+4:]) & 0x00ffffff)

			if off+4 > len(section) {
				return nil, errForkCorrupt
			}
			size := int(binary.BigEndian.Uint32(section[off:]))
			if size < 0 || off+4+size > len(section) {
				return nil, errForkCorrupt
			}
			blob := make([]byte, size)
			copy(blob, section[off+4:])

			var name string
			if nameOff != 0xffff {
				pos := nameList + nameOff
				if pos >= len(m) || pos+1+int(m[pos]) > len(m) {
					return nil, errForkCorrupt
				}
				name = fromMacRoman(m[pos+1 : pos+1+int(m[pos])])
			}
			f.AddResource(code, id, name, blob)
		}
	}
	return f, nil
}

func (f *File) buildFork() ([]byte, error) {
	types := make([]*Type, 0, len(f.types))
	for _, t := range f.types {
		if t.Count() > 0 {
			types = append(types, t)
		}
	}

	// Data section: length-prefixed blobs, offsets recorded per resource.
	section := new(bytes.Buffer)
	offsets := make(map[*Resource]int)
	for _, t := range types {
		for _, r := range t.resources {
			offsets[r] = section.Len()
			if section.Len() > 0x00ffffff {
				return nil, errors.New("resource data exceeds fork limits")
			}
			var size [4]byte
			binary.BigEndian.PutUint32(size[:], uint32(len(r.data)))
			section.Write(size[:])
			section.Write(r.data)
		}
	}

	names := new(bytes.Buffer)
	refs := new(bytes.Buffer)
	refListStart := typeListStart + 2 + len(types)*8 - typeListStart

	m := new(bytes.Buffer)
	m.Write(make([]byte, mapTypeListField)) // reserved header copy, handle, file ref, attributes
	var u16 [2]byte
	binary.BigEndian.PutUint16(u16[:], uint16(typeListStart))
	m.Write(u16[:])
	// name list offset patched once the reference lists are sized
	nameListField := m.Len()
	m.Write(u16[:])

	binary.BigEndian.PutUint16(u16[:], uint16(len(types)-1))
	m.Write(u16[:])

	refOff := refListStart
	for _, t := range types {
		code := codeBytes(t.code)
		m.Write(code[:])
		binary.BigEndian.PutUint16(u16[:], uint16(t.Count()-1))
		m.Write(u16[:])
		binary.BigEndian.PutUint16(u16[:], uint16(refOff))
		m.Write(u16[:])
		refOff += t.Count() * 12

		for _, r := range t.resources {
			binary.BigEndian.PutUint16(u16[:], uint16(int16(r.id)))
			refs.Write(u16[:])
			if r.name == "" {
				refs.Write([]byte{0xff, 0xff})
			} else {
				binary.BigEndian.PutUint16(u16[:], uint16(names.Len()))
				refs.Write(u16[:])
				encoded := toMacRoman(r.name)
				if len(encoded) > 255 {
					encoded = encoded[:255]
				}
				names.WriteByte(byte(len(encoded)))
				names.Write(encoded)
			}
			var off [4]byte
			binary.BigEndian.PutUint32(off[:], uint32(offsets[r]))
			refs.Write(off[:])
			refs.Write(make([]byte, 4))
		}
	}
	m.Write(refs.Bytes())

	nameListStart := m.Len()
	m.Write(names.Bytes())
	binary.BigEndian.PutUint16(m.Bytes()[nameListField:], uint16(nameListStart))

	out := new(bytes.Buffer)
	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], forkDataStart)
	out.Write(u32[:])
	binary.BigEndian.PutUint32(u32[:], uint32(forkDataStart+section.Len()))
	out.Write(u32[:])
	binary.BigEndian.PutUint32(u32[:], uint32(section.Len()))
	out.Write(u32[:])
	binary.BigEndian.PutUint32(u32[:], uint32(m.Len()))
	out.Write(u32[:])
	out.Write(make([]byte, forkDataStart-forkHeaderSize))
	out.Write(section.Bytes())
	out.Write(m.Bytes())
	return out.Bytes(), nil
}
