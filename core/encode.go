package core

import (
	"math"
	"strconv"
)

// Encode returns the PDF syntax for obj. Dictionary keys are written in
// sorted order so equal objects always encode to equal bytes.
func Encode(obj Object) []byte {
	return AppendObject(nil, obj)
}

// AppendObject appends the PDF syntax for obj to buf. Streams are written as
// their dictionary followed by the stream body, with /Length set to the
// length of Data.
func AppendObject(buf []byte, obj Object) []byte {
	switch v := obj.(type) {
	case nil, Null:
		return append(buf, "null"...)
	case Bool:
		return strconv.AppendBool(buf, bool(v))
	case Int:
		return strconv.AppendInt(buf, int64(v), 10)
	case Real:
		return appendReal(buf, float64(v))
	case String:
		return appendString(buf, string(v))
	case Name:
		return appendName(buf, string(v))
	case Array:
		buf = append(buf, '[')
		for i, e := range v {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = AppendObject(buf, e)
		}
		return append(buf, ']')
	case Dict:
		buf = append(buf, "<<"...)
		for i, k := range v.Keys() {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = appendName(buf, k)
			buf = append(buf, ' ')
			buf = AppendObject(buf, v[k])
		}
		return append(buf, ">>"...)
	case *Stream:
		dict := make(Dict, len(v.Dict)+1)
		for k, e := range v.Dict {
			dict[k] = e
		}
		dict["Length"] = Int(len(v.Data))
		buf = AppendObject(buf, dict)
		buf = append(buf, "\nstream\n"...)
		buf = append(buf, v.Data...)
		return append(buf, "\nendstream"...)
	case IndirectRef:
		buf = strconv.AppendInt(buf, int64(v.Number), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(v.Generation), 10)
		return append(buf, " R"...)
	default:
		return append(buf, "null"...)
	}
}

// appendReal writes a real without exponent notation, which PDF does not allow.
func appendReal(buf []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(buf, '0')
	}
	return strconv.AppendFloat(buf, f, 'f', -1, 64)
}

// appendString writes s as a literal string, or as a hex string when most of
// it is binary.
func appendString(buf []byte, s string) []byte {
	binary := 0
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c > 0x7e {
			binary++
		}
	}
	if binary*4 > len(s) {
		const hex = "0123456789ABCDEF"
		buf = append(buf, '<')
		for i := 0; i < len(s); i++ {
			buf = append(buf, hex[s[i]>>4], hex[s[i]&0x0f])
		}
		return append(buf, '>')
	}

	buf = append(buf, '(')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(', ')', '\\':
			buf = append(buf, '\\', c)
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		default:
			if c < 0x20 || c > 0x7e {
				buf = append(buf, '\\', '0'+(c>>6), '0'+(c>>3)&7, '0'+c&7)
			} else {
				buf = append(buf, c)
			}
		}
	}
	return append(buf, ')')
}

// appendName writes a name, escaping delimiters and non-regular bytes as #XX.
func appendName(buf []byte, name string) []byte {
	const hex = "0123456789ABCDEF"
	buf = append(buf, '/')
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x21 || c > 0x7e || c == '#' || isDelimiter(c) {
			buf = append(buf, '#', hex[c>>4], hex[c&0x0f])
			continue
		}
		buf = append(buf, c)
	}
	return buf
}
