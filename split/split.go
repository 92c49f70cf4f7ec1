package split

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/stitch/document"
	"github.com/tsawler/stitch/logging"
	"github.com/tsawler/stitch/pagerange"
)

// Part is one output of a split.
type Part struct {
	Document *document.Document
	Label    string
	Pages    int // pages kept from the source
}

// Options controls splitting.
type Options struct {
	// Workers is the number of groups built concurrently. Values below 2
	// build the groups one after another.
	Workers int
}

// DefaultOptions returns options that build groups sequentially.
func DefaultOptions() Options {
	return Options{Workers: 1}
}

// ByRanges splits doc into one part per token of the range spec, labelled
// with the token as written.
func ByRanges(doc *document.Document, spec string, opts Options) ([]Part, error) {
	maxPages, err := doc.PageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	groups, err := pagerange.Parse(spec, maxPages)
	if err != nil {
		return nil, err
	}
	return build(doc, groups, maxPages, opts)
}

// ByFixedSize splits doc into consecutive parts of size pages, the last part
// holding any remainder. Parts are labelled "start-end".
func ByFixedSize(doc *document.Document, size int, opts Options) ([]Part, error) {
	maxPages, err := doc.PageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	groups, err := pagerange.Chunk(maxPages, size)
	if err != nil {
		return nil, err
	}
	return build(doc, groups, maxPages, opts)
}

// build clones doc once per group and deletes the pages the group does not
// keep. doc is only read, so groups may be built concurrently.
func build(doc *document.Document, groups []pagerange.Group, maxPages int, opts Options) ([]Part, error) {
	parts := make([]Part, len(groups))

	var g errgroup.Group
	g.SetLimit(max(opts.Workers, 1))
	for i, group := range groups {
		g.Go(func() error {
			clone := doc.Clone()
			if err := clone.DeletePages(pagerange.Complement(group, maxPages)); err != nil {
				return fmt.Errorf("failed to build part %q: %w", group.Label, err)
			}
			parts[i] = Part{Document: clone, Label: group.Label, Pages: len(group.Pages)}

			logging.Logger().Debug("built split part",
				"label", group.Label, "pages", len(group.Pages), "objects", clone.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}
