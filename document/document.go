package document

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/tsawler/stitch/core"
	"github.com/tsawler/stitch/pages"
)

var (
	// ErrObjectNotFound is returned when a reference names no object in the document.
	ErrObjectNotFound = errors.New("document: object not found")

	// ErrNoCatalog is returned when the trailer /Root does not lead to a catalog dictionary.
	ErrNoCatalog = errors.New("document: catalog not found")

	// ErrPageOutOfRange is returned when a page number is outside 1..PageCount.
	ErrPageOutOfRange = errors.New("document: page number out of range")
)

// maxRefChain bounds how many references Resolve follows before giving up.
const maxRefChain = 32

// Document is an in-memory PDF object graph. Objects are keyed by object id;
// the trailer names the catalog (/Root) and optionally the /Info dictionary.
type Document struct {
	Version   string
	Trailer   core.Dict
	Objects   map[core.IndirectRef]core.Object
	MaxID     int
	Bookmarks []*Bookmark
}

// New returns an empty document with the given header version.
func New(version string) *Document {
	return &Document{
		Version: version,
		Trailer: core.Dict{},
		Objects: make(map[core.IndirectRef]core.Object),
	}
}

// CompareRefs orders object ids by number, then generation.
func CompareRefs(a, b core.IndirectRef) int {
	if c := cmp.Compare(a.Number, b.Number); c != 0 {
		return c
	}
	return cmp.Compare(a.Generation, b.Generation)
}

// IDs returns every object id in ascending order.
func (d *Document) IDs() []core.IndirectRef {
	ids := make([]core.IndirectRef, 0, len(d.Objects))
	for ref := range d.Objects {
		ids = append(ids, ref)
	}
	slices.SortFunc(ids, CompareRefs)
	return ids
}

// Len returns the number of objects.
func (d *Document) Len() int {
	return len(d.Objects)
}

// Get returns the object stored under ref.
func (d *Document) Get(ref core.IndirectRef) (core.Object, bool) {
	obj, ok := d.Objects[ref]
	return obj, ok
}

// Set stores obj under ref, raising MaxID if needed.
func (d *Document) Set(ref core.IndirectRef, obj core.Object) {
	d.Objects[ref] = obj
	if ref.Number > d.MaxID {
		d.MaxID = ref.Number
	}
}

// Add stores obj under a fresh id and returns that id.
func (d *Document) Add(obj core.Object) core.IndirectRef {
	ref := core.IndirectRef{Number: d.MaxID + 1}
	d.Set(ref, obj)
	return ref
}

// Delete removes the object stored under ref.
func (d *Document) Delete(ref core.IndirectRef) {
	delete(d.Objects, ref)
}

// ResolveReference returns the object stored under ref.
func (d *Document) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	obj, ok := d.Objects[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %d %d R", ErrObjectNotFound, ref.Number, ref.Generation)
	}
	return obj, nil
}

// Resolve follows obj through any chain of references. Non-reference
// objects are returned unchanged.
func (d *Document) Resolve(obj core.Object) (core.Object, error) {
	for i := 0; i < maxRefChain; i++ {
		ref, ok := obj.(core.IndirectRef)
		if !ok {
			return obj, nil
		}
		next, err := d.ResolveReference(ref)
		if err != nil {
			return nil, err
		}
		obj = next
	}
	return nil, fmt.Errorf("reference chain longer than %d", maxRefChain)
}

// Catalog returns the id and dictionary of the document catalog.
func (d *Document) Catalog() (core.IndirectRef, core.Dict, error) {
	ref, ok := d.Trailer.GetIndirectRef("Root")
	if !ok {
		return core.IndirectRef{}, nil, fmt.Errorf("%w: trailer has no /Root reference", ErrNoCatalog)
	}
	obj, ok := d.Objects[ref]
	if !ok {
		return core.IndirectRef{}, nil, fmt.Errorf("%w: /Root %d %d R is missing", ErrNoCatalog, ref.Number, ref.Generation)
	}
	dict, ok := obj.(core.Dict)
	if !ok {
		return core.IndirectRef{}, nil, fmt.Errorf("%w: /Root is %T", ErrNoCatalog, obj)
	}
	return ref, dict, nil
}

// Info returns the document information dictionary, or nil when absent.
func (d *Document) Info() core.Dict {
	obj, err := d.Resolve(d.Trailer.Get("Info"))
	if err != nil {
		return nil
	}
	info, _ := obj.(core.Dict)
	return info
}

// PageTree returns a fresh walk over the document's page tree.
func (d *Document) PageTree() (*pages.PageTree, error) {
	_, catalog, err := d.Catalog()
	if err != nil {
		return nil, err
	}
	tree, err := pages.NewCatalog(catalog, d).PageTree()
	if err != nil {
		return nil, fmt.Errorf("failed to locate page tree: %w", err)
	}
	return tree, nil
}

// Pages returns the leaf pages in document order.
func (d *Document) Pages() ([]*pages.Page, error) {
	tree, err := d.PageTree()
	if err != nil {
		return nil, err
	}
	return tree.Pages()
}

// PageCount returns the number of leaf pages reached by walking the tree.
func (d *Document) PageCount() (int, error) {
	p, err := d.Pages()
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Clone returns a deep copy of the document that shares no mutable state
// with the original.
func (d *Document) Clone() *Document {
	c := &Document{
		Version: d.Version,
		Trailer: d.Trailer.Clone(),
		Objects: make(map[core.IndirectRef]core.Object, len(d.Objects)),
		MaxID:   d.MaxID,
	}
	if c.Trailer == nil {
		c.Trailer = core.Dict{}
	}
	for ref, obj := range d.Objects {
		c.Objects[ref] = core.Clone(obj)
	}
	for _, b := range d.Bookmarks {
		c.Bookmarks = append(c.Bookmarks, b.clone())
	}
	return c
}
