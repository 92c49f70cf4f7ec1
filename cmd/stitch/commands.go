package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tsawler/stitch"
	"github.com/tsawler/stitch/core"
	"github.com/tsawler/stitch/document"
	"github.com/tsawler/stitch/logging"
	"github.com/tsawler/stitch/pagerange"
	"github.com/tsawler/stitch/reader"
	"github.com/tsawler/stitch/split"
	"github.com/tsawler/stitch/writer"
)

// MergeCmd merges its inputs, in order, into one file.
type MergeCmd struct {
	Inputs    []string `arg:"" name:"input" help:"PDF files to merge, in order" type:"existingfile"`
	Out       string   `short:"o" help:"Output file" required:""`
	Bookmarks bool     `help:"Add a bookmark for each input, titled with its file name"`
	Version   string   `name:"pdf-version" help:"Override the output PDF version (e.g. 1.7)"`
}

func (c *MergeCmd) Run(g *Globals) error {
	inputs := make([][]byte, len(c.Inputs))
	titles := make([]string, len(c.Inputs))
	for i, name := range c.Inputs {
		data, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		inputs[i] = data
		titles[i] = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}

	opts := stitch.DefaultOptions()
	opts.Workers = g.Workers
	opts.Compress = g.Compress
	opts.Bookmarks = c.Bookmarks
	opts.Titles = titles
	opts.Version = c.Version

	data, err := stitch.MergeWithOptions(inputs, opts)
	if err != nil {
		return err
	}
	count, err := stitch.PageCount(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	g.out.wrote(c.Out, count, len(data))
	return nil
}

// SplitTarget holds the flags shared by the split commands.
type SplitTarget struct {
	Input      string `arg:"" help:"PDF file to split" type:"existingfile"`
	OutDir     string `name:"out-dir" short:"d" help:"Directory for the parts" default:"." type:"path"`
	BestEffort bool   `name:"best-effort" help:"Write the parts that succeed instead of failing the whole split"`
}

// SplitRangesCmd splits a file by a range spec.
type SplitRangesCmd struct {
	SplitTarget `embed:""`
	Spec        string `arg:"" help:"Page range spec, e.g. \"1, 2-3, 5\""`
}

func (c *SplitRangesCmd) Run(g *Globals) error {
	return c.split(g, func(doc *document.Document) ([]split.Part, error) {
		return split.ByRanges(doc, c.Spec, split.Options{Workers: g.Workers})
	})
}

// SplitFixedCmd splits a file into parts of a fixed number of pages.
type SplitFixedCmd struct {
	SplitTarget `embed:""`
	Size        string `arg:"" help:"Pages per part"`
}

func (c *SplitFixedCmd) Run(g *Globals) error {
	size, err := pagerange.ParseFixed(c.Size)
	if err != nil {
		return err
	}
	return c.split(g, func(doc *document.Document) ([]split.Part, error) {
		return split.ByFixedSize(doc, size, split.Options{Workers: g.Workers})
	})
}

// split loads the input, builds the parts and writes each one next to the
// others in OutDir. Without BestEffort nothing is left behind on failure.
func (t *SplitTarget) split(g *Globals, build func(*document.Document) ([]split.Part, error)) error {
	doc, err := reader.Open(t.Input)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", stitch.ErrParseFailure, t.Input, err)
	}
	parts, err := build(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(t.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.OutDir, err)
	}

	base := strings.TrimSuffix(filepath.Base(t.Input), filepath.Ext(t.Input))
	cfg := writer.Config{Compress: g.Compress}

	type result struct {
		name  string
		data  []byte
		pages int
	}
	results := make([]result, 0, len(parts))
	var errs []error
	for _, part := range parts {
		name := filepath.Join(t.OutDir, stitch.OutputName(base, part.Label))
		data, err := writer.Bytes(part.Document, cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("part %q: %w", strings.TrimSpace(part.Label), err))
			continue
		}
		results = append(results, result{name: name, data: data, pages: part.Pages})
	}
	if len(errs) > 0 && !t.BestEffort {
		return errors.Join(errs...)
	}

	var written []string
	for _, r := range results {
		if err := os.WriteFile(r.name, r.data, 0o644); err != nil {
			err = fmt.Errorf("failed to write %s: %w", r.name, err)
			if !t.BestEffort {
				for _, name := range written {
					os.Remove(name)
				}
				return err
			}
			errs = append(errs, err)
			continue
		}
		written = append(written, r.name)
		g.out.wrote(r.name, r.pages, len(r.data))
	}

	for _, err := range errs {
		g.out.failed("%v", err)
	}
	logging.Logger().Info("split finished",
		"input", t.Input, "parts", len(parts), "written", len(written), "failed", len(errs))
	if len(written) == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ValidateRangesCmd checks the syntax of a range spec.
type ValidateRangesCmd struct {
	Spec string `arg:"" help:"Page range spec"`
}

func (c *ValidateRangesCmd) Run(g *Globals) error {
	return report(g, c.Spec, stitch.ValidateRangeSpec)
}

// ValidateFixedCmd checks the syntax of a chunk size.
type ValidateFixedCmd struct {
	Spec string `arg:"" help:"Chunk size"`
}

func (c *ValidateFixedCmd) Run(g *Globals) error {
	return report(g, c.Spec, stitch.ValidateFixedSpec)
}

var errInvalidSpec = errors.New("invalid spec")

func report(g *Globals, spec string, validate func(string) (bool, error)) error {
	ok, err := validate(spec)
	if err != nil {
		return err
	}
	g.out.result(ok, spec)
	if !ok {
		return fmt.Errorf("%w: %q", errInvalidSpec, spec)
	}
	return nil
}

// InfoCmd prints a summary of a file.
type InfoCmd struct {
	Input string `arg:"" help:"PDF file" type:"existingfile"`
}

func (c *InfoCmd) Run(g *Globals) error {
	st, err := os.Stat(c.Input)
	if err != nil {
		return err
	}
	doc, err := reader.Open(c.Input)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", stitch.ErrParseFailure, c.Input, err)
	}
	count, err := doc.PageCount()
	if err != nil {
		return err
	}

	g.out.field("file", c.Input)
	g.out.field("version", doc.Version)
	g.out.field("pages", humanize.Comma(int64(count)))
	g.out.field("objects", humanize.Comma(int64(doc.Len())))
	g.out.field("size", humanize.Bytes(uint64(st.Size())))
	if count > 0 {
		c.firstPage(g, doc)
	}
	if info := doc.Info(); info != nil {
		if obj, err := doc.Resolve(info.Get("Title")); err == nil {
			if title, ok := obj.(core.String); ok {
				g.out.field("title", core.DecodeTextString(title))
			}
		}
	}
	return nil
}

// firstPage prints the size and rotation of page 1.
func (c *InfoCmd) firstPage(g *Globals, doc *document.Document) {
	all, err := doc.Pages()
	if err != nil {
		g.out.warning("page tree: %v", err)
		return
	}
	page := all[0]
	w, err := page.Width()
	var h float64
	if err == nil {
		h, err = page.Height()
	}
	if err != nil {
		g.out.warning("page 1 size: %v", err)
		return
	}
	g.out.field("page size", fmt.Sprintf("%s x %s pt", humanize.Ftoa(w), humanize.Ftoa(h)))
	if r := page.Rotate(); r != 0 {
		g.out.field("rotate", r)
	}
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.out.w, "stitch %s\n", version)
	return nil
}
