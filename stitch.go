// Package stitch merges PDF files and splits them into parts.
//
// Merge several files into one:
//
//	out, err := stitch.Merge([][]byte{a, b, c})
//	if err != nil {
//	    // handle error
//	}
//
// Split a file by a page range spec, naming each part after its label:
//
//	parts, err := stitch.SplitByRanges(data, "1, 2-3, 5")
//	for _, p := range parts {
//	    os.WriteFile(stitch.OutputName("report", p.Label), p.Data, 0o644)
//	}
//
// or into equal chunks with [SplitByFixedSize]. Every entry point is
// all-or-nothing: it returns a complete result or an error, never a partial
// list.
//
// For work on the object graph itself, the lower-level reader, document,
// merge, split and writer packages are also available.
package stitch

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/stitch/document"
	"github.com/tsawler/stitch/merge"
	"github.com/tsawler/stitch/pagerange"
	"github.com/tsawler/stitch/reader"
	"github.com/tsawler/stitch/split"
	"github.com/tsawler/stitch/writer"
)

// Output is one serialized part of a split.
type Output struct {
	Data  []byte
	Label string
}

// Merge combines the PDF files in inputs, in order, into one file.
func Merge(inputs [][]byte) ([]byte, error) {
	return MergeWithOptions(inputs, DefaultOptions())
}

// MergeWithOptions is Merge with explicit options.
func MergeWithOptions(inputs [][]byte, opts Options) ([]byte, error) {
	opts = opts.clone()

	docs, err := loadAll(inputs, opts.workers())
	if err != nil {
		return nil, err
	}

	merged, err := merge.Documents(docs, merge.Options{
		Bookmarks: opts.Bookmarks,
		Titles:    opts.Titles,
		Version:   opts.Version,
	})
	if err != nil {
		return nil, err
	}

	data, err := writer.Bytes(merged, writerConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to write merged document: %w", err)
	}
	return data, nil
}

// SplitByRanges splits the PDF in data into one output per token of spec,
// for example "1, 2-3, 5".
func SplitByRanges(data []byte, spec string) ([]Output, error) {
	return SplitByRangesWithOptions(data, spec, DefaultOptions())
}

// SplitByRangesWithOptions is SplitByRanges with explicit options.
func SplitByRangesWithOptions(data []byte, spec string, opts Options) ([]Output, error) {
	opts = opts.clone()

	doc, err := load(data, 0)
	if err != nil {
		return nil, err
	}
	parts, err := split.ByRanges(doc, spec, split.Options{Workers: opts.workers()})
	if err != nil {
		return nil, err
	}
	return serialize(parts, opts)
}

// SplitByFixedSize splits the PDF in data into consecutive outputs of
// chunkSize pages. The last output holds any remainder.
func SplitByFixedSize(data []byte, chunkSize int) ([]Output, error) {
	return SplitByFixedSizeWithOptions(data, chunkSize, DefaultOptions())
}

// SplitByFixedSizeWithOptions is SplitByFixedSize with explicit options.
func SplitByFixedSizeWithOptions(data []byte, chunkSize int, opts Options) ([]Output, error) {
	opts = opts.clone()

	doc, err := load(data, 0)
	if err != nil {
		return nil, err
	}
	parts, err := split.ByFixedSize(doc, chunkSize, split.Options{Workers: opts.workers()})
	if err != nil {
		return nil, err
	}
	return serialize(parts, opts)
}

// ValidateRangeSpec reports whether spec is a well-formed range spec. Only
// the empty spec is an error.
func ValidateRangeSpec(spec string) (bool, error) {
	return pagerange.Validate(spec)
}

// ValidateFixedSpec reports whether spec is a well-formed chunk size. Only
// the empty spec is an error.
func ValidateFixedSpec(spec string) (bool, error) {
	return pagerange.ValidateFixed(spec)
}

// OutputName returns the file name for a split part: "{base}-{label}.pdf".
// Spaces around the label, which range specs allow, are trimmed.
func OutputName(base, label string) string {
	return fmt.Sprintf("%s-%s.pdf", base, strings.TrimSpace(label))
}

// PageCount returns the number of pages in the PDF in data, counted by
// walking its page tree.
func PageCount(data []byte) (int, error) {
	doc, err := load(data, 0)
	if err != nil {
		return 0, err
	}
	return doc.PageCount()
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := stitch.Must(stitch.PageCount(data))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// load parses one input. index is zero-based and only used in errors.
func load(data []byte, index int) (*document.Document, error) {
	doc, err := reader.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: input %d: %w", ErrParseFailure, index+1, err)
	}
	return doc, nil
}

// loadAll parses every input, up to workers at a time, keeping input order.
func loadAll(inputs [][]byte, workers int) ([]*document.Document, error) {
	docs := make([]*document.Document, len(inputs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, data := range inputs {
		g.Go(func() error {
			doc, err := load(data, i)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// serialize writes every part, up to the configured number at a time.
func serialize(parts []split.Part, opts Options) ([]Output, error) {
	outputs := make([]Output, len(parts))
	cfg := writerConfig(opts)

	var g errgroup.Group
	g.SetLimit(opts.workers())
	for i, part := range parts {
		g.Go(func() error {
			data, err := writer.Bytes(part.Document, cfg)
			if err != nil {
				return fmt.Errorf("failed to write part %q: %w", part.Label, err)
			}
			outputs[i] = Output{Data: data, Label: part.Label}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func writerConfig(opts Options) writer.Config {
	return writer.Config{Compress: opts.Compress, FileID: opts.FileID}
}
