package rsrc

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Type codes and resource names are MacRoman on the wire; the in-memory
// model uses UTF-8 strings.

func toMacRoman(s string) []byte {
	b, err := encoding.ReplaceUnsupported(charmap.Macintosh.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return b
}

func fromMacRoman(b []byte) string {
	s, err := charmap.Macintosh.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// codeBytes renders a type code as exactly four MacRoman bytes.
func codeBytes(code string) [4]byte {
	b := [4]byte{' ', ' ', ' ', ' '}
	copy(b[:], toMacRoman(code))
	return b
}
