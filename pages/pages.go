package pages

import (
	"errors"
	"fmt"
	"maps"

	"github.com/tsawler/stitch/core"
)

// ErrPageTreeCycle is returned when a page tree node is reachable from itself.
var ErrPageTreeCycle = errors.New("pages: page tree contains a cycle")

// InheritableKeys are the page attributes a page may take from an ancestor
// Pages node when its own dictionary lacks them.
var InheritableKeys = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// ObjectResolver looks up indirect objects.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// Catalog wraps a document catalog dictionary.
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// PageTree returns the tree rooted at the catalog's /Pages reference.
func (c *Catalog) PageTree() (*PageTree, error) {
	ref, ok := c.dict.GetIndirectRef("Pages")
	if !ok {
		return nil, errors.New("catalog /Pages is missing or not a reference")
	}
	return NewPageTree(ref, c.resolver), nil
}

// Node is an intermediate Pages node met during the walk.
type Node struct {
	Ref    core.IndirectRef
	Parent core.IndirectRef // zero for the root
	Dict   core.Dict
}

// PageTree walks a page tree once and caches the result.
type PageTree struct {
	root     core.IndirectRef
	resolver ObjectResolver

	loaded bool
	pages  []*Page
	nodes  []*Node
}

func NewPageTree(root core.IndirectRef, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Root returns the id of the root Pages node.
func (t *PageTree) Root() core.IndirectRef {
	return t.root
}

// Pages returns the leaf pages in document order.
func (t *PageTree) Pages() ([]*Page, error) {
	if err := t.load(); err != nil {
		return nil, err
	}
	return t.pages, nil
}

// Nodes returns the intermediate Pages nodes in visit order, root first.
func (t *PageTree) Nodes() ([]*Node, error) {
	if err := t.load(); err != nil {
		return nil, err
	}
	return t.nodes, nil
}

// Count returns the number of leaves reached. Stored /Count entries are
// ignored.
func (t *PageTree) Count() (int, error) {
	p, err := t.Pages()
	return len(p), err
}

func (t *PageTree) load() error {
	if t.loaded {
		return nil
	}
	w := walker{resolver: t.resolver, visited: make(map[core.IndirectRef]bool)}
	if err := w.visit(t.root, core.IndirectRef{}, nil); err != nil {
		return fmt.Errorf("failed to traverse page tree: %w", err)
	}
	t.pages, t.nodes, t.loaded = w.pages, w.nodes, true
	return nil
}

type walker struct {
	resolver ObjectResolver
	visited  map[core.IndirectRef]bool
	pages    []*Page
	nodes    []*Node
}

// visit walks the node ref, a child of parent. inherited holds the
// inheritable attributes set on its ancestors and is never modified.
func (w *walker) visit(ref, parent core.IndirectRef, inherited core.Dict) error {
	if w.visited[ref] {
		return fmt.Errorf("%w: object %d", ErrPageTreeCycle, ref.Number)
	}
	w.visited[ref] = true

	obj, err := w.resolver.ResolveReference(ref)
	if err != nil {
		return fmt.Errorf("page tree node %d: %w", ref.Number, err)
	}
	node, ok := obj.(core.Dict)
	if !ok {
		return fmt.Errorf("page tree node %d is %T, not a dictionary", ref.Number, obj)
	}

	if !IsPagesNode(node) {
		w.pages = append(w.pages, &Page{Ref: ref, Parent: parent, dict: node, inherited: inherited, resolver: w.resolver})
		return nil
	}
	w.nodes = append(w.nodes, &Node{Ref: ref, Parent: parent, Dict: node})

	kidsObj, err := w.resolver.Resolve(node.Get("Kids"))
	if err != nil {
		return fmt.Errorf("/Kids of node %d: %w", ref.Number, err)
	}
	kids, ok := kidsObj.(core.Array)
	if !ok && kidsObj != nil {
		return fmt.Errorf("/Kids of node %d is %T", ref.Number, kidsObj)
	}

	next, copied := inherited, false
	for _, key := range InheritableKeys {
		if v := node.Get(key); v != nil {
			if !copied {
				next, copied = maps.Clone(inherited), true
				if next == nil {
					next = core.Dict{}
				}
			}
			next[key] = v
		}
	}

	for i, kid := range kids {
		kidRef, ok := kid.(core.IndirectRef)
		if !ok {
			return fmt.Errorf("kid %d of node %d is %T, not a reference", i, ref.Number, kid)
		}
		if err := w.visit(kidRef, ref, next); err != nil {
			return err
		}
	}
	return nil
}

// IsPagesNode reports whether a page tree node is an intermediate node:
// /Type /Pages, or no /Type but a /Kids entry.
func IsPagesNode(node core.Dict) bool {
	if typ, ok := node.GetName("Type"); ok {
		return typ == "Pages"
	}
	return node.Has("Kids")
}

// Page is a leaf of the page tree.
type Page struct {
	Ref    core.IndirectRef // id of the page dictionary
	Parent core.IndirectRef // Pages node whose /Kids lists the page

	dict      core.Dict
	inherited core.Dict
	resolver  ObjectResolver
}

// Dict returns the page dictionary as stored.
func (p *Page) Dict() core.Dict {
	return p.dict
}

// Attr returns key from the page dictionary or, for inheritable keys, from
// the nearest ancestor that sets it.
func (p *Page) Attr(key string) core.Object {
	if v := p.dict.Get(key); v != nil {
		return v
	}
	return p.inherited.Get(key)
}

// Flattened returns a copy of the page dictionary with every inherited
// attribute made explicit, so the page no longer depends on its ancestors.
func (p *Page) Flattened() core.Dict {
	out := p.dict.Clone()
	for _, key := range InheritableKeys {
		if v := p.inherited.Get(key); v != nil && !out.Has(key) {
			out[key] = core.Clone(v)
		}
	}
	return out
}

// MediaBox returns the page's [llx lly urx ury] media box.
func (p *Page) MediaBox() ([4]float64, error) {
	var box [4]float64
	obj, err := p.resolver.Resolve(p.Attr("MediaBox"))
	if err != nil {
		return box, fmt.Errorf("/MediaBox: %w", err)
	}
	arr, ok := obj.(core.Array)
	if !ok || len(arr) != 4 {
		return box, fmt.Errorf("/MediaBox is %v, not a 4-element array", obj)
	}
	for i, v := range arr {
		switch n := v.(type) {
		case core.Int:
			box[i] = float64(n)
		case core.Real:
			box[i] = float64(n)
		default:
			return box, fmt.Errorf("/MediaBox element %d is %T", i, v)
		}
	}
	return box, nil
}

func (p *Page) Width() (float64, error) {
	box, err := p.MediaBox()
	return box[2] - box[0], err
}

func (p *Page) Height() (float64, error) {
	box, err := p.MediaBox()
	return box[3] - box[1], err
}

// Rotate returns /Rotate, or 0.
func (p *Page) Rotate() int {
	r, _ := p.Attr("Rotate").(core.Int)
	return int(r)
}
