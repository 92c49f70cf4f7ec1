package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"

	"github.com/tsawler/stitch/core"
	"github.com/tsawler/stitch/document"
	"github.com/tsawler/stitch/logging"
)

var (
	// ErrNotPDF is returned when no %PDF- header is found near the start of the input.
	ErrNotPDF = errors.New("reader: missing PDF header")

	// ErrEncrypted is returned for documents with an /Encrypt dictionary.
	ErrEncrypted = errors.New("reader: encrypted documents are not supported")
)

// headerSearchLimit is how far into the input the %PDF- header may start.
const headerSearchLimit = 1024

var (
	headerPattern    = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)
	objectDefPattern = regexp.MustCompile(`(?m)(?:^|[\r\n\s])(\d+)\s+(\d+)\s+obj\b`)
)

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader reads objects from a PDF held in an io.ReaderAt. All offsets are
// relative to the %PDF- header, so leading junk before it is tolerated.
type Reader struct {
	src        *io.SectionReader
	xrefTable  *core.XRefTable
	trailer    core.Dict
	version    PDFVersion
	objCache   map[int]core.Object
	objStreams map[int]*core.ObjectStream
	loading    map[int]bool
}

var _ core.ReferenceResolver = (*Reader)(nil)

// NewReader parses the header and cross-reference data of the PDF in r.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	headerOffset, version, err := parseHeader(r, size)
	if err != nil {
		return nil, err
	}

	reader := &Reader{
		src:        io.NewSectionReader(r, headerOffset, size-headerOffset),
		version:    version,
		objCache:   make(map[int]core.Object),
		objStreams: make(map[int]*core.ObjectStream),
		loading:    make(map[int]bool),
	}

	xrefTable, err := reader.loadXRef()
	if err != nil {
		logging.Logger().Warn("cross-reference data unusable, scanning for objects", "error", err)
		xrefTable, err = reader.rebuildXRef()
		if err != nil {
			return nil, fmt.Errorf("failed to load xref: %w", err)
		}
	}
	reader.xrefTable = xrefTable
	reader.trailer = xrefTable.Trailer

	return reader, nil
}

// Load parses a complete PDF held in memory into a Document.
func Load(data []byte) (*document.Document, error) {
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return r.Document()
}

// Open reads and parses the PDF file at filename.
func Open(filename string) (*document.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return Load(data)
}

// parseHeader finds %PDF-x.y in the first bytes of r and returns its offset.
func parseHeader(r io.ReaderAt, size int64) (int64, PDFVersion, error) {
	n := int64(headerSearchLimit)
	if size < n {
		n = size
	}
	buf := make([]byte, n)
	read, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return 0, PDFVersion{}, fmt.Errorf("failed to read header: %w", err)
	}
	buf = buf[:read]

	loc := headerPattern.FindSubmatchIndex(buf)
	if loc == nil {
		return 0, PDFVersion{}, ErrNotPDF
	}
	major, _ := strconv.Atoi(string(buf[loc[2]:loc[3]]))
	minor, _ := strconv.Atoi(string(buf[loc[4]:loc[5]]))

	return int64(loc[0]), PDFVersion{Major: major, Minor: minor}, nil
}

// loadXRef loads and merges every cross-reference section in the file
func (r *Reader) loadXRef() (*core.XRefTable, error) {
	xrefParser := core.NewXRefParser(r.src)
	tables, err := xrefParser.ParseAllXRefs()
	if err != nil {
		return nil, err
	}

	table := core.MergeXRefTables(tables...)
	if !table.Trailer.Has("Root") {
		return nil, fmt.Errorf("trailer missing /Root entry")
	}
	return table, nil
}

// rebuildXRef scans the whole file for "n g obj" headers and builds a table
// from what it finds. The last definition of an object wins, as it would
// after an incremental update. The trailer is recovered from the last
// trailer dictionary or, failing that, from the catalog found by scanning.
func (r *Reader) rebuildXRef() (*core.XRefTable, error) {
	data, err := io.ReadAll(io.NewSectionReader(r.src, 0, r.src.Size()))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	table := core.NewXRefTable()
	for _, m := range objectDefPattern.FindAllSubmatchIndex(data, -1) {
		num, err1 := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, err2 := strconv.Atoi(string(data[m[4]:m[5]]))
		if err1 != nil || err2 != nil {
			continue
		}
		table.Set(num, &core.XRefEntry{
			Type:       core.XRefEntryUncompressed,
			Offset:     int64(m[2]),
			Generation: gen,
			InUse:      true,
		})
	}
	if table.Size() == 0 {
		return nil, fmt.Errorf("no objects found")
	}
	r.xrefTable = table

	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		obj, err := core.NewParser(bytes.NewReader(data[idx+len("trailer"):])).ParseObject()
		if dict, ok := obj.(core.Dict); err == nil && ok && dict.Has("Root") {
			table.Trailer = dict
			return table, nil
		}
	}

	nums := make([]int, 0, table.Size())
	for num := range table.Entries {
		nums = append(nums, num)
	}
	slices.Sort(nums)
	for _, num := range nums {
		obj, err := r.GetObject(num)
		if err != nil {
			continue
		}
		if dict, ok := obj.(core.Dict); ok {
			if typ, _ := dict.GetName("Type"); typ == "Catalog" {
				table.Trailer = core.Dict{"Root": core.IndirectRef{Number: num, Generation: table.Entries[num].Generation}}
				return table, nil
			}
		}
	}
	return nil, fmt.Errorf("no catalog found")
}

// Version returns the PDF version from the header
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the trailer dictionary
func (r *Reader) Trailer() core.Dict {
	return r.trailer
}

// XRefTable returns the merged cross-reference table
func (r *Reader) XRefTable() *core.XRefTable {
	return r.xrefTable
}

// GetObject loads an object by its number
// Uses caching to avoid re-reading objects
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}

	entry, ok := r.xrefTable.Get(objNum)
	if !ok {
		return nil, fmt.Errorf("object %d not found in xref table", objNum)
	}
	if !entry.InUse {
		return nil, fmt.Errorf("object %d is not in use", objNum)
	}

	if r.loading[objNum] {
		return nil, fmt.Errorf("object %d refers to itself while loading", objNum)
	}
	r.loading[objNum] = true
	defer delete(r.loading, objNum)

	var obj core.Object
	var err error
	if entry.Type == core.XRefEntryCompressed {
		obj, err = r.loadCompressed(objNum, int(entry.Offset))
	} else {
		obj, err = r.loadAt(objNum, entry.Offset)
	}
	if err != nil {
		return nil, err
	}

	// /Length may have been indirect; store it directly.
	if s, ok := obj.(*core.Stream); ok {
		s.Dict["Length"] = core.Int(len(s.Data))
	}

	r.objCache[objNum] = obj
	return obj, nil
}

// loadAt parses the indirect object stored at offset.
func (r *Reader) loadAt(objNum int, offset int64) (core.Object, error) {
	if offset < 0 || offset >= r.src.Size() {
		return nil, fmt.Errorf("object %d offset %d outside file", objNum, offset)
	}

	parser := core.NewParser(io.NewSectionReader(r.src, offset, r.src.Size()-offset))
	parser.SetReferenceResolver(r)
	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
	}

	if indObj.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", objNum, indObj.Ref.Number)
	}
	return indObj.Object, nil
}

// loadCompressed extracts an object from the object stream numbered stmNum.
func (r *Reader) loadCompressed(objNum, stmNum int) (core.Object, error) {
	objStm, ok := r.objStreams[stmNum]
	if !ok {
		obj, err := r.GetObject(stmNum)
		if err != nil {
			return nil, fmt.Errorf("failed to load object stream %d: %w", stmNum, err)
		}
		stream, ok := obj.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("object stream %d is %T", stmNum, obj)
		}
		objStm, err = core.NewObjectStream(stream)
		if err != nil {
			return nil, fmt.Errorf("invalid object stream %d: %w", stmNum, err)
		}
		r.objStreams[stmNum] = objStm
	}

	obj, _, err := objStm.GetObjectByNumber(objNum)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %d from stream %d: %w", objNum, stmNum, err)
	}
	return obj, nil
}

// ResolveReference resolves an indirect reference
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Document loads every in-use object into a Document. Cross-reference
// streams and object streams are containers and are not carried over; the
// objects inside object streams are. Objects that fail to parse are skipped
// with a warning. The catalog must load.
func (r *Reader) Document() (*document.Document, error) {
	if r.trailer.Has("Encrypt") {
		return nil, ErrEncrypted
	}

	doc := document.New(r.version.String())

	nums := make([]int, 0, r.xrefTable.Size())
	for num, entry := range r.xrefTable.Entries {
		if entry.InUse && num > 0 {
			nums = append(nums, num)
		}
	}
	slices.Sort(nums)

	skipped := 0
	for _, num := range nums {
		obj, err := r.GetObject(num)
		if err != nil {
			logging.Logger().Warn("skipping unreadable object", "object", num, "error", err)
			skipped++
			continue
		}
		if s, ok := obj.(*core.Stream); ok {
			if typ, _ := s.Dict.GetName("Type"); typ == "XRef" || typ == "ObjStm" {
				continue
			}
		}

		entry := r.xrefTable.Entries[num]
		gen := 0
		if entry.Type != core.XRefEntryCompressed {
			gen = entry.Generation
		}
		doc.Set(core.IndirectRef{Number: num, Generation: gen}, obj)
	}

	for _, key := range []string{"Root", "Info"} {
		if v, ok := r.trailer.GetIndirectRef(key); ok {
			doc.Trailer[key] = v
		}
	}

	_, catalog, err := doc.Catalog()
	if err != nil {
		return nil, err
	}
	if v, ok := catalog.GetName("Version"); ok && document.CompareVersions(string(v), doc.Version) > 0 {
		doc.Version = string(v)
	}

	logging.Logger().Debug("loaded document",
		"version", doc.Version, "objects", doc.Len(), "skipped", skipped)
	return doc, nil
}
