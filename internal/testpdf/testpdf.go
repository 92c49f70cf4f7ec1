// Package testpdf builds small PDF documents for tests.
package testpdf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/tsawler/stitch/core"
	"github.com/tsawler/stitch/document"
	"github.com/tsawler/stitch/writer"
)

// FileID is the trailer /ID written by Bytes, so output is reproducible.
var FileID = []byte("stitch-test-file")

var labelPattern = regexp.MustCompile(`\(([^)]*)\) Tj`)

// Options describes the document to build.
type Options struct {
	Version string
	Pages   int
	Prefix  string // page text is Prefix + page number, "page" when empty
	Title   string // /Info /Title, omitted when empty
	Nested  bool   // split the pages over two intermediate Pages nodes
}

// New builds a document whose pages each draw a distinct label and share a
// single font.
func New(opts Options) *document.Document {
	if opts.Version == "" {
		opts.Version = "1.4"
	}
	if opts.Prefix == "" {
		opts.Prefix = "page"
	}

	d := document.New(opts.Version)
	catalog := d.Add(core.Dict{"Type": core.Name("Catalog")})
	root := d.Add(core.Dict{
		"Type":     core.Name("Pages"),
		"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(612), core.Int(792)},
	})
	font := d.Add(core.Dict{
		"Type":     core.Name("Font"),
		"Subtype":  core.Name("Type1"),
		"BaseFont": core.Name("Helvetica"),
	})

	parents := []core.IndirectRef{root}
	if opts.Nested && opts.Pages > 1 {
		left := d.Add(core.Dict{"Type": core.Name("Pages"), "Parent": root})
		right := d.Add(core.Dict{"Type": core.Name("Pages"), "Parent": root})
		parents = []core.IndirectRef{left, right}
		d.Objects[root].(core.Dict)["Kids"] = core.Array{left, right}
		d.Objects[root].(core.Dict)["Count"] = core.Int(opts.Pages)
	}

	kids := make([]core.Array, len(parents))
	for i := 1; i <= opts.Pages; i++ {
		slot := 0
		if len(parents) == 2 && i > opts.Pages/2 {
			slot = 1
		}
		content := d.Add(&core.Stream{
			Dict: core.Dict{},
			Data: []byte(fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s%d) Tj ET", opts.Prefix, i)),
		})
		page := d.Add(core.Dict{
			"Type":      core.Name("Page"),
			"Parent":    parents[slot],
			"Contents":  content,
			"Resources": core.Dict{"Font": core.Dict{"F1": font}},
		})
		kids[slot] = append(kids[slot], page)
	}
	for i, parent := range parents {
		if kids[i] == nil {
			kids[i] = core.Array{}
		}
		d.Objects[parent].(core.Dict)["Kids"] = kids[i]
		d.Objects[parent].(core.Dict)["Count"] = core.Int(len(kids[i]))
	}
	if len(parents) == 2 {
		d.Objects[root].(core.Dict)["Count"] = core.Int(opts.Pages)
	}

	d.Objects[catalog].(core.Dict)["Pages"] = root
	d.Trailer["Root"] = catalog

	if opts.Title != "" {
		d.Trailer["Info"] = d.Add(core.Dict{"Title": core.EncodeTextString(opts.Title)})
	}
	return d
}

// Bytes serializes d without compression.
func Bytes(t testing.TB, d *document.Document) []byte {
	t.Helper()
	data, err := writer.Bytes(d, writer.Config{FileID: FileID})
	if err != nil {
		t.Fatalf("writer.Bytes() error = %v", err)
	}
	return data
}

// WriteFile serializes d into dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, d *document.Document) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Bytes(t, d), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// Labels returns the text drawn on each page of d, in page order.
func Labels(t testing.TB, d *document.Document) []string {
	t.Helper()
	all, err := d.Pages()
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	labels := make([]string, 0, len(all))
	for _, p := range all {
		obj, err := d.Resolve(p.Dict().Get("Contents"))
		if err != nil {
			t.Fatalf("failed to resolve page contents: %v", err)
		}
		s, ok := obj.(*core.Stream)
		if !ok {
			t.Fatalf("page %v contents is %T", p.Ref, obj)
		}
		data, err := s.Decoded()
		if err != nil {
			t.Fatalf("failed to decode page contents: %v", err)
		}
		m := labelPattern.FindSubmatch(data)
		if m == nil {
			labels = append(labels, "")
			continue
		}
		labels = append(labels, string(m[1]))
	}
	return labels
}

// Range returns the labels prefix+first .. prefix+last.
func Range(prefix string, first, last int) []string {
	var out []string
	for i := first; i <= last; i++ {
		out = append(out, fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}
