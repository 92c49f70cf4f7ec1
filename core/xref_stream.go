package core

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
)

// XRefEntryType identifies how an object is stored in the file.
type XRefEntryType int

const (
	XRefEntryFree         XRefEntryType = iota // free list entry
	XRefEntryUncompressed                      // object stored at a byte offset
	XRefEntryCompressed                        // object stored inside an object stream
)

// String returns a short name for the entry type
func (t XRefEntryType) String() string {
	switch t {
	case XRefEntryFree:
		return "free"
	case XRefEntryUncompressed:
		return "uncompressed"
	case XRefEntryCompressed:
		return "compressed"
	default:
		return fmt.Sprintf("XRefEntryType(%d)", int(t))
	}
}

var objHeaderPattern = regexp.MustCompile(`^\d+\s+\d+\s+obj`)

// isXRefStream reports whether the data at the parser's start position is an
// xref stream object rather than a classic "xref" table.
func (x *XRefParser) isXRefStream() (bool, error) {
	if _, err := x.reader.Seek(x.startPos, io.SeekStart); err != nil {
		return false, fmt.Errorf("failed to seek to xref: %w", err)
	}

	buf := make([]byte, 64)
	n, err := io.ReadFull(x.reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, fmt.Errorf("failed to read xref header: %w", err)
	}
	head := bytes.TrimLeft(buf[:n], " \t\r\n\f\x00")

	switch {
	case bytes.HasPrefix(head, []byte("xref")):
		return false, nil
	case objHeaderPattern.Match(head):
		return true, nil
	default:
		return false, fmt.Errorf("no xref table or xref stream at offset %d", x.startPos)
	}
}

// parseXRefStream parses a cross-reference stream object starting at the
// parser's start position. The stream dictionary doubles as the trailer.
func (x *XRefParser) parseXRefStream() (*XRefTable, error) {
	if _, err := x.reader.Seek(x.startPos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to xref stream: %w", err)
	}

	parser := NewParser(x.reader)
	if x.resolver != nil {
		parser.SetReferenceResolver(x.resolver)
	}
	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse xref stream object: %w", err)
	}

	stream, ok := indObj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("xref stream object is %T, not a stream", indObj.Object)
	}

	if typ, _ := stream.Dict.GetName("Type"); typ != "XRef" {
		return nil, fmt.Errorf("xref stream has /Type %q, want /XRef", typ)
	}

	size, ok := stream.Dict.GetInt("Size")
	if !ok {
		return nil, fmt.Errorf("xref stream missing /Size")
	}

	wArr, ok := stream.Dict.GetArray("W")
	if !ok {
		return nil, fmt.Errorf("xref stream missing /W")
	}
	if len(wArr) != 3 {
		return nil, fmt.Errorf("xref stream /W has %d fields, want 3", len(wArr))
	}
	w := make([]int, 3)
	for i, v := range wArr {
		n, ok := v.(Int)
		if !ok || n < 0 || n > 8 {
			return nil, fmt.Errorf("invalid /W field %d: %v", i, v)
		}
		w[i] = int(n)
	}
	entrySize := w[0] + w[1] + w[2]
	if entrySize == 0 {
		return nil, fmt.Errorf("xref stream /W is all zeros")
	}

	// Subsections default to a single run covering [0, Size).
	index := []int{0, int(size)}
	if idxArr, ok := stream.Dict.GetArray("Index"); ok {
		if len(idxArr)%2 != 0 {
			return nil, fmt.Errorf("xref stream /Index has odd length %d", len(idxArr))
		}
		index = index[:0]
		for _, v := range idxArr {
			n, ok := v.(Int)
			if !ok || n < 0 {
				return nil, fmt.Errorf("invalid /Index value: %v", v)
			}
			index = append(index, int(n))
		}
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode xref stream: %w", err)
	}

	table := NewXRefTable()
	table.IsStream = true
	table.Trailer = stream.Dict.Clone()
	for _, k := range []string{"Type", "W", "Index", "Length", "Filter", "DecodeParms"} {
		delete(table.Trailer, k)
	}

	pos := 0
	for i := 0; i < len(index); i += 2 {
		first, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			if pos+entrySize > len(data) {
				return nil, fmt.Errorf("xref stream data truncated at object %d", first+j)
			}
			entry, n, err := x.parseXRefStreamEntry(data[pos:], w)
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", first+j, err)
			}
			pos += n
			if entry != nil {
				table.Set(first+j, entry)
			}
		}
	}

	return table, nil
}

// parseXRefStreamEntry decodes one binary entry using the /W field widths.
// For compressed entries Offset holds the object stream number and
// Generation the index within that stream. Unknown entry types yield a nil
// entry, which callers treat as a reference to the null object.
func (x *XRefParser) parseXRefStreamEntry(data []byte, w []int) (*XRefEntry, int, error) {
	if len(w) != 3 {
		return nil, 0, fmt.Errorf("invalid /W length %d", len(w))
	}
	size := w[0] + w[1] + w[2]
	if len(data) < size {
		return nil, 0, fmt.Errorf("need %d bytes for xref entry, have %d", size, len(data))
	}

	typ := int64(1)
	if w[0] > 0 {
		typ = readBigEndianInt(data, w[0])
	}
	f1 := readBigEndianInt(data[w[0]:], w[1])
	f2 := readBigEndianInt(data[w[0]+w[1]:], w[2])

	switch typ {
	case 0:
		return &XRefEntry{Type: XRefEntryFree, Offset: f1, Generation: int(f2)}, size, nil
	case 1:
		return &XRefEntry{Type: XRefEntryUncompressed, Offset: f1, Generation: int(f2), InUse: true}, size, nil
	case 2:
		return &XRefEntry{Type: XRefEntryCompressed, Offset: f1, Generation: int(f2), InUse: true}, size, nil
	default:
		return nil, size, nil
	}
}

// readBigEndianInt reads an unsigned big-endian integer of the given width.
func readBigEndianInt(data []byte, width int) int64 {
	var v int64
	for i := 0; i < width && i < len(data); i++ {
		v = v<<8 | int64(data[i])
	}
	return v
}
