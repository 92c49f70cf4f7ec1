package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
)

// startXRefWindow is how much of the end of the file is searched for the
// startxref keyword.
const startXRefWindow = 1024

// XRefEntry is one cross-reference entry. Compressed entries reuse Offset
// for the number of the object stream holding the object and Generation
// for the object's index within it.
type XRefEntry struct {
	Type       XRefEntryType
	Offset     int64
	Generation int
	InUse      bool
}

// XRefTable is one cross-reference section, or several merged.
type XRefTable struct {
	Entries  map[int]*XRefEntry
	Trailer  Dict
	IsStream bool // parsed from an xref stream rather than an xref table
}

// NewXRefTable returns an empty table.
func NewXRefTable() *XRefTable {
	return &XRefTable{Entries: make(map[int]*XRefEntry), Trailer: Dict{}}
}

func (x *XRefTable) Get(num int) (*XRefEntry, bool) {
	e, ok := x.Entries[num]
	return e, ok
}

func (x *XRefTable) Set(num int, e *XRefEntry) {
	x.Entries[num] = e
}

func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// MergeXRefTables combines tables given oldest first. Entries from later
// tables replace earlier ones and the last trailer is kept.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	merged := NewXRefTable()
	for _, t := range tables {
		for num, e := range t.Entries {
			merged.Set(num, e)
		}
		merged.Trailer = t.Trailer
	}
	return merged
}

// XRefParser reads the cross-reference sections of a file.
type XRefParser struct {
	reader   io.ReadSeeker
	startPos int64 // offset of the section being parsed
	resolver ReferenceResolver
}

func NewXRefParser(r io.ReadSeeker) *XRefParser {
	return &XRefParser{reader: r}
}

// SetReferenceResolver sets the resolver used for indirect /Length values in
// xref streams.
func (x *XRefParser) SetReferenceResolver(r ReferenceResolver) {
	x.resolver = r
}

// FindXRef returns the offset named by the last startxref keyword.
func (x *XRefParser) FindXRef() (int64, error) {
	size, err := x.reader.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to seek to end: %w", err)
	}
	start := max(size-startXRefWindow, 0)
	tail := make([]byte, size-start)
	if _, err := x.reader.Seek(start, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek to startxref area: %w", err)
	}
	if _, err := io.ReadFull(x.reader, tail); err != nil {
		return 0, fmt.Errorf("failed to read startxref area: %w", err)
	}

	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, errors.New("startxref not found")
	}
	fields := bytes.Fields(tail[idx+len("startxref"):])
	if len(fields) == 0 {
		return 0, errors.New("startxref has no offset")
	}
	offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid startxref offset %q", fields[0])
	}
	return offset, nil
}

// ParseXRef parses the xref table or xref stream at offset.
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	x.startPos = offset
	isStream, err := x.isXRefStream()
	if err != nil {
		return nil, err
	}
	if isStream {
		return x.parseXRefStream()
	}
	return x.parseXRefTable()
}

// parseXRefTable reads a classic "xref" section and the trailer that ends
// it. Entries are read as tokens, so the fixed 20-byte layout is not
// required.
func (x *XRefParser) parseXRefTable() (*XRefTable, error) {
	if _, err := x.reader.Seek(x.startPos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to xref: %w", err)
	}
	p := NewParser(x.reader)

	if err := p.expect("xref"); err != nil {
		return nil, err
	}

	table := NewXRefTable()
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if tok.Is("trailer") {
			break
		}
		if tok.Type != TokenInteger {
			return nil, fmt.Errorf("xref subsection: unexpected %s", tok)
		}
		countTok, err := p.next()
		if err != nil {
			return nil, err
		}
		first, err1 := strconv.Atoi(string(tok.Value))
		count, err2 := strconv.Atoi(string(countTok.Value))
		if countTok.Type != TokenInteger || err1 != nil || err2 != nil || first < 0 || count < 0 {
			return nil, fmt.Errorf("invalid xref subsection header at %d", tok.Pos)
		}

		for i := range count {
			entry, err := xrefEntry(p)
			if err != nil {
				return nil, fmt.Errorf("xref entry for object %d: %w", first+i, err)
			}
			table.Set(first+i, entry)
		}
	}

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse trailer: %w", err)
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is %T, not a dictionary", obj)
	}
	table.Trailer = trailer
	return table, nil
}

// xrefEntry reads "offset generation n|f".
func xrefEntry(p *Parser) (*XRefEntry, error) {
	var toks [3]Token
	for i := range toks {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		toks[i] = tok
	}
	if toks[0].Type != TokenInteger || toks[1].Type != TokenInteger {
		return nil, fmt.Errorf("malformed entry %s", toks[0])
	}
	offset, err := strconv.ParseInt(string(toks[0].Value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid offset %q", toks[0].Value)
	}
	gen, err := strconv.Atoi(string(toks[1].Value))
	if err != nil {
		return nil, fmt.Errorf("invalid generation %q", toks[1].Value)
	}

	switch {
	case toks[2].Is("n"):
		return &XRefEntry{Type: XRefEntryUncompressed, Offset: offset, Generation: gen, InUse: true}, nil
	case toks[2].Is("f"):
		return &XRefEntry{Type: XRefEntryFree, Offset: offset, Generation: gen}, nil
	}
	return nil, fmt.Errorf("invalid entry flag %q", toks[2].Value)
}

// ParseAllXRefs follows the /Prev chain from the last section and returns
// every section oldest first. A hybrid file's /XRefStm stream is folded
// into the table that names it.
func (x *XRefParser) ParseAllXRefs() ([]*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, fmt.Errorf("failed to find xref: %w", err)
	}

	var tables []*XRefTable
	seen := make(map[int64]bool)
	for {
		if seen[offset] {
			return nil, fmt.Errorf("xref /Prev chain loops at offset %d", offset)
		}
		seen[offset] = true

		table, err := x.ParseXRef(offset)
		if err != nil {
			return nil, fmt.Errorf("failed to parse xref at %d: %w", offset, err)
		}
		if err := x.mergeHybridStream(table); err != nil {
			return nil, err
		}
		tables = append(tables, table)

		prev, ok := table.Trailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = int64(prev)
	}

	slices.Reverse(tables)
	return tables, nil
}

// mergeHybridStream adds entries from a hybrid file's /XRefStm stream to a
// classic table. Entries the table already has in use are kept.
func (x *XRefParser) mergeHybridStream(table *XRefTable) error {
	if table.IsStream {
		return nil
	}
	stm, ok := table.Trailer.GetInt("XRefStm")
	if !ok {
		return nil
	}

	x.startPos = int64(stm)
	streamTable, err := x.parseXRefStream()
	if err != nil {
		return fmt.Errorf("failed to parse /XRefStm at %d: %w", stm, err)
	}
	for num, e := range streamTable.Entries {
		if existing, ok := table.Get(num); ok && existing.InUse {
			continue
		}
		table.Set(num, e)
	}
	return nil
}
