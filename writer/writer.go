// Package writer serializes a document.Document as a PDF file.
package writer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/tsawler/stitch/core"
	"github.com/tsawler/stitch/document"
	"github.com/tsawler/stitch/internal/filters"
	"github.com/tsawler/stitch/logging"
)

// ErrMissingRoot is returned when the trailer has no /Root reference.
var ErrMissingRoot = errors.New("writer: trailer has no /Root")

// defaultVersion is written when the document carries no version.
const defaultVersion = "1.4"

// Config controls serialization.
type Config struct {
	// Compress Flate-encodes stream bodies that have no /Filter.
	Compress bool

	// FileID is written as both halves of the trailer /ID. A random UUID
	// is used when empty.
	FileID []byte
}

// DefaultConfig returns the configuration used by Bytes callers that have
// no preference: compression on, random file id.
func DefaultConfig() Config {
	return Config{Compress: true}
}

// countingWriter tracks the number of bytes written so object offsets can
// be recorded for the cross-reference table.
type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (c *countingWriter) printf(format string, args ...any) {
	fmt.Fprintf(c, format, args...)
}

// Bytes serializes doc into a new buffer.
func Bytes(doc *document.Document, cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes doc to w: header, objects in ascending id order, a
// classic cross-reference table and the trailer. The document is not
// modified.
func Write(w io.Writer, doc *document.Document, cfg Config) error {
	root, ok := doc.Trailer.GetIndirectRef("Root")
	if !ok {
		return ErrMissingRoot
	}

	out := &countingWriter{w: bufio.NewWriter(w)}

	version := doc.Version
	if version == "" {
		version = defaultVersion
	}
	out.printf("%%PDF-%s\n", version)
	// A comment of high-bit bytes marks the file as binary for transfer tools.
	out.Write([]byte{'%', 0xE2, 0xE3, 0xCF, 0xD3, '\n'})

	ids := doc.IDs()
	offsets := make(map[int]int64, len(ids))
	generations := make(map[int]int, len(ids))
	var buf []byte
	for _, ref := range ids {
		obj, err := prepare(doc.Objects[ref], cfg)
		if err != nil {
			return fmt.Errorf("failed to encode object %d: %w", ref.Number, err)
		}

		offsets[ref.Number] = out.n
		generations[ref.Number] = ref.Generation

		buf = buf[:0]
		buf = fmt.Appendf(buf, "%d %d obj\n", ref.Number, ref.Generation)
		buf = core.AppendObject(buf, obj)
		buf = append(buf, "\nendobj\n"...)
		out.Write(buf)
	}

	size := 1
	if len(ids) > 0 {
		size = ids[len(ids)-1].Number + 1
	}

	xrefOffset := out.n
	writeXRef(out, size, offsets, generations)

	trailer := core.Dict{
		"Size": core.Int(size),
		"Root": root,
		"ID":   fileID(cfg.FileID),
	}
	if info, ok := doc.Trailer.GetIndirectRef("Info"); ok {
		trailer["Info"] = info
	}
	out.Write([]byte("trailer\n"))
	out.Write(core.Encode(trailer))
	out.printf("\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	if err := out.w.Flush(); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	logging.Logger().Debug("wrote document", "objects", len(ids), "bytes", out.n, "compress", cfg.Compress)
	return nil
}

// writeXRef writes a single-section table covering 0..size-1. Gaps are
// chained into the free list starting at object 0.
func writeXRef(out *countingWriter, size int, offsets map[int]int64, generations map[int]int) {
	var free []int
	for n := 1; n < size; n++ {
		if _, ok := offsets[n]; !ok {
			free = append(free, n)
		}
	}
	nextFree := func(i int) int {
		if i < len(free) {
			return free[i]
		}
		return 0
	}

	out.printf("xref\n0 %d\n", size)
	out.printf("%010d 65535 f \n", nextFree(0))
	fi := 0
	for n := 1; n < size; n++ {
		if off, ok := offsets[n]; ok {
			out.printf("%010d %05d n \n", off, generations[n])
			continue
		}
		fi++
		out.printf("%010d 00001 f \n", nextFree(fi))
	}
}

// prepare returns the object as it should be written, compressing bare
// streams when configured.
func prepare(obj core.Object, cfg Config) (core.Object, error) {
	s, ok := obj.(*core.Stream)
	if !ok || !cfg.Compress || s.Dict.Has("Filter") || len(s.Data) == 0 {
		return obj, nil
	}

	data, err := filters.FlateEncode(s.Data)
	if err != nil {
		return nil, err
	}
	if len(data) >= len(s.Data) {
		return obj, nil
	}

	dict := make(core.Dict, len(s.Dict)+1)
	for k, v := range s.Dict {
		dict[k] = v
	}
	dict["Filter"] = core.Name("FlateDecode")
	delete(dict, "DecodeParms")
	return &core.Stream{Dict: dict, Data: data}, nil
}

// fileID returns the trailer /ID array.
func fileID(id []byte) core.Array {
	if len(id) == 0 {
		u := uuid.New()
		id = u[:]
	}
	s := core.String(id)
	return core.Array{s, s}
}

