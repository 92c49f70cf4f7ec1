package document

import (
	"github.com/tsawler/stitch/core"
)

// Bookmark is a pending outline entry. BuildOutline turns the document's
// bookmarks into an outline tree.
type Bookmark struct {
	Title    string
	Page     core.IndirectRef // zero until resolved by AdjustZeroPages
	Children []*Bookmark
}

func (b *Bookmark) clone() *Bookmark {
	c := &Bookmark{Title: b.Title, Page: b.Page}
	for _, child := range b.Children {
		c.Children = append(c.Children, child.clone())
	}
	return c
}

// walkBookmarks calls fn for every bookmark, parents before children.
func walkBookmarks(list []*Bookmark, fn func(*Bookmark)) {
	for _, b := range list {
		fn(b)
		walkBookmarks(b.Children, fn)
	}
}

// AddBookmark appends a top-level pending bookmark.
func (d *Document) AddBookmark(b *Bookmark) {
	d.Bookmarks = append(d.Bookmarks, b)
}

// AdjustZeroPages points every bookmark whose page is unset or no longer
// exists at the first page of the document.
func (d *Document) AdjustZeroPages() {
	if len(d.Bookmarks) == 0 {
		return
	}
	all, err := d.Pages()
	if err != nil || len(all) == 0 {
		return
	}
	first := all[0].Ref

	walkBookmarks(d.Bookmarks, func(b *Bookmark) {
		if _, ok := d.Objects[b.Page]; !ok || b.Page.Number == 0 {
			b.Page = first
		}
	})
}

// BuildOutline writes the pending bookmarks as an outline tree and attaches
// it to the catalog as /Outlines. It does nothing when there are no
// bookmarks. The pending list is cleared on success.
func (d *Document) BuildOutline() (core.IndirectRef, bool) {
	if len(d.Bookmarks) == 0 {
		return core.IndirectRef{}, false
	}
	_, catalog, err := d.Catalog()
	if err != nil {
		return core.IndirectRef{}, false
	}

	root := core.Dict{"Type": core.Name("Outlines")}
	rootRef := d.Add(root)
	count := d.addOutlineItems(rootRef, root, d.Bookmarks)
	root["Count"] = core.Int(count)

	catalog["Outlines"] = rootRef
	d.Bookmarks = nil
	return rootRef, true
}

// addOutlineItems creates the items for list under parent and links them as
// siblings. It returns the number of items created, descendants included.
func (d *Document) addOutlineItems(parentRef core.IndirectRef, parent core.Dict, list []*Bookmark) int {
	refs := make([]core.IndirectRef, len(list))
	items := make([]core.Dict, len(list))
	for i, b := range list {
		items[i] = core.Dict{
			"Title":  core.EncodeTextString(b.Title),
			"Parent": parentRef,
			"Dest":   core.Array{b.Page, core.Name("Fit")},
		}
		refs[i] = d.Add(items[i])
	}

	total := len(list)
	for i, item := range items {
		if i > 0 {
			item["Prev"] = refs[i-1]
		}
		if i < len(items)-1 {
			item["Next"] = refs[i+1]
		}
		if children := list[i].Children; len(children) > 0 {
			n := d.addOutlineItems(refs[i], item, children)
			item["Count"] = core.Int(n)
			total += n
		}
	}

	if len(refs) > 0 {
		parent["First"] = refs[0]
		parent["Last"] = refs[len(refs)-1]
	}
	return total
}
