package merge

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tsawler/stitch/core"
	"github.com/tsawler/stitch/document"
	"github.com/tsawler/stitch/logging"
	"github.com/tsawler/stitch/pages"
)

var (
	// ErrCatalogNotFound is returned when no input has a catalog.
	ErrCatalogNotFound = errors.New("merge: catalog object not found")

	// ErrPagesNotFound is returned when no input has a Pages node.
	ErrPagesNotFound = errors.New("merge: pages object not found")
)

// Options controls merging.
type Options struct {
	// Bookmarks adds an outline with one entry per input, pointing at the
	// input's first page.
	Bookmarks bool

	// Titles names the bookmark of each input. Missing titles default to
	// "Document N".
	Titles []string

	// Version overrides the output version. By default the highest input
	// version is used.
	Version string
}

// DefaultOptions returns options that merge without bookmarks.
func DefaultOptions() Options {
	return Options{}
}

// collectedPage is a page taken from one of the renumbered inputs.
type collectedPage struct {
	ref  core.IndirectRef
	dict core.Dict
}

// DocumentsDefault merges docs with DefaultOptions.
func DocumentsDefault(docs []*document.Document) (*document.Document, error) {
	return Documents(docs, DefaultOptions())
}

// Documents merges docs, in order, into a new document.
func Documents(docs []*document.Document, opts Options) (*document.Document, error) {
	objects := make(map[core.IndirectRef]core.Object)
	var collected []collectedPage
	var versions []string
	var info core.Object
	var bookmarks []*document.Bookmark

	next := 1
	for i, src := range docs {
		if src == nil {
			return nil, fmt.Errorf("document %d is nil", i+1)
		}

		d := src.Clone()
		next = d.RenumberFrom(next) + 1

		refs, dicts, err := documentPages(d)
		if err != nil {
			return nil, fmt.Errorf("failed to collect pages of document %d: %w", i+1, err)
		}
		for j := range refs {
			collected = append(collected, collectedPage{ref: refs[j], dict: dicts[j]})
		}

		for ref, obj := range d.Objects {
			objects[ref] = obj
		}
		versions = append(versions, d.Version)
		if i == 0 {
			info = d.Trailer.Get("Info")
		}

		if opts.Bookmarks {
			b := &document.Bookmark{Title: bookmarkTitle(opts.Titles, i)}
			if len(refs) > 0 {
				b.Page = refs[0]
			}
			bookmarks = append(bookmarks, b)
		}
	}

	version := opts.Version
	if version == "" {
		version = document.MaxVersion(versions...)
	}
	out := document.New(version)

	var (
		catalogRef, pagesRef core.IndirectRef
		catalog, pagesNode   core.Dict
	)
	ids := make([]core.IndirectRef, 0, len(objects))
	for ref := range objects {
		ids = append(ids, ref)
	}
	slices.SortFunc(ids, document.CompareRefs)

	for _, ref := range ids {
		obj := objects[ref]
		dict, isDict := obj.(core.Dict)
		kind := document.Classify(obj)
		if !isDict && kind != document.KindOther {
			kind = document.KindOther
		}

		switch kind {
		case document.KindCatalog:
			if catalog == nil {
				catalogRef = ref
			}
			catalog = dict
		case document.KindPages:
			if pagesNode == nil {
				pagesRef = ref
				pagesNode = dict
				continue
			}
			for k, v := range dict {
				if !pagesNode.Has(k) {
					pagesNode[k] = v
				}
			}
		case document.KindPage:
			// reinserted below in collected order
		case document.KindOutlines, document.KindOutline:
			// source outlines are not carried over
		default:
			out.Set(ref, obj)
		}
	}

	if catalog == nil {
		return nil, ErrCatalogNotFound
	}
	if pagesNode == nil {
		return nil, ErrPagesNotFound
	}

	kids := make(core.Array, len(collected))
	for i, p := range collected {
		p.dict["Parent"] = pagesRef
		out.Set(p.ref, p.dict)
		kids[i] = p.ref
	}

	pagesNode["Kids"] = kids
	pagesNode["Count"] = core.Int(len(collected))
	delete(pagesNode, "Parent")
	// Every page already carries its inherited attributes; values merged in
	// from other inputs' Pages nodes must not reach pages that lacked them.
	for _, key := range pages.InheritableKeys {
		delete(pagesNode, key)
	}
	out.Set(pagesRef, pagesNode)

	catalog["Pages"] = pagesRef
	delete(catalog, "Outlines")
	out.Set(catalogRef, catalog)

	out.Trailer["Root"] = catalogRef
	if ref, ok := info.(core.IndirectRef); ok {
		if _, exists := out.Get(ref); exists {
			out.Trailer["Info"] = ref
		}
	}

	out.MaxID = out.Len()
	out.Bookmarks = bookmarks
	out.Renumber()
	out.AdjustZeroPages()
	out.BuildOutline()
	removed := out.Compact()

	logging.Logger().Debug("merged documents",
		"inputs", len(docs),
		"pages", len(collected),
		"objects", out.Len(),
		"removed", removed,
		"version", out.Version)

	return out, nil
}

// documentPages returns the pages of d with inherited attributes made
// explicit. A document without a catalog, or whose catalog names no page
// tree, contributes no pages.
func documentPages(d *document.Document) ([]core.IndirectRef, []core.Dict, error) {
	_, catalog, err := d.Catalog()
	if errors.Is(err, document.ErrNoCatalog) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if _, ok := catalog.GetIndirectRef("Pages"); !ok {
		return nil, nil, nil
	}
	return d.FlattenedPages()
}

func bookmarkTitle(titles []string, i int) string {
	if i < len(titles) && titles[i] != "" {
		return titles[i]
	}
	return fmt.Sprintf("Document %d", i+1)
}

