package core

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf16BOM = []byte{0xFE, 0xFF}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// EncodeTextString encodes s as a PDF text string. Text that fits in Latin-1
// is stored as single bytes; anything else is stored as UTF-16BE with a
// byte order mark.
func EncodeTextString(s string) String {
	if b, err := charmap.ISO8859_1.NewEncoder().String(s); err == nil {
		return String(b)
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.String(s)
	if err != nil {
		return String(s)
	}
	return String(b)
}

// DecodeTextString decodes a PDF text string into UTF-8.
func DecodeTextString(s String) string {
	b := []byte(s)
	switch {
	case bytes.HasPrefix(b, utf16BOM):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(b)
		if err == nil {
			return string(out)
		}
	case bytes.HasPrefix(b, utf8BOM):
		return string(b[len(utf8BOM):])
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
