// Package pages walks the PDF page tree.
//
// PDF documents organize pages in a tree of Pages nodes whose leaves are
// Page dictionaries. The [PageTree] type walks this hierarchy from the root
// node's object id and yields the leaves in document order:
//
//	tree := pages.NewPageTree(rootRef, resolver)
//	all, _ := tree.Pages()
//	for _, p := range all {
//	    fmt.Println(p.Ref, p.Parent)
//	}
//
// The walk never trusts the /Count entries stored in the file; counts are
// derived from the leaves actually reached. Cycles are reported as
// [ErrPageTreeCycle].
//
// # Inheritance
//
// Resources, MediaBox, CropBox and Rotate may be set on an ancestor Pages
// node instead of the page itself. [Page.Attr] looks a key up the way a
// viewer would, and [Page.Flattened] returns a page dictionary with the
// inherited values copied in, which is what merging needs before a page is
// moved under a different parent.
//
// # Object Resolution
//
// The [ObjectResolver] interface abstracts object lookup so the walk does not
// depend on how the document was loaded.
package pages
