package document

import (
	"fmt"

	"github.com/tsawler/stitch/core"
	"github.com/tsawler/stitch/logging"
	"github.com/tsawler/stitch/pages"
)

// DeletePages removes the pages with the given 1-based numbers. Page
// numbers refer to the order of a walk of the page tree taken before any
// removal, so the order of numbers does not matter and duplicates are
// ignored.
//
// Removed pages are unlinked from their parents' /Kids, intermediate Pages
// nodes left without pages are removed, and every /Count is recomputed.
// References to removed objects are scrubbed from the rest of the graph
// (dictionary entries dropped, array slots set to null) and objects no
// longer reachable from the trailer are pruned.
func (d *Document) DeletePages(numbers []int) error {
	if len(numbers) == 0 {
		return nil
	}

	tree, err := d.PageTree()
	if err != nil {
		return err
	}
	all, err := tree.Pages()
	if err != nil {
		return err
	}

	deleted := make(map[core.IndirectRef]bool, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > len(all) {
			return fmt.Errorf("%w: %d not in 1..%d", ErrPageOutOfRange, n, len(all))
		}
		deleted[all[n-1].Ref] = true
	}

	for ref := range deleted {
		d.Delete(ref)
	}

	visited := make(map[core.IndirectRef]bool)
	remaining := d.rebuildNode(tree.Root(), deleted, visited)

	d.scrub()
	pruned := d.Prune()

	logging.Logger().Debug("deleted pages",
		"deleted", len(deleted), "remaining", remaining, "pruned", pruned)
	return nil
}

// rebuildNode drops deleted kids below the Pages node ref, removes
// descendants that end up empty, and rewrites /Kids and /Count. It returns
// the number of leaf pages left under ref.
func (d *Document) rebuildNode(ref core.IndirectRef, deleted, visited map[core.IndirectRef]bool) int {
	if visited[ref] {
		return 0
	}
	visited[ref] = true

	node, ok := d.Objects[ref].(core.Dict)
	if !ok {
		return 0
	}
	// /Kids may be a reference to a separate array object.
	var kids core.Array
	if obj, err := d.Resolve(node.Get("Kids")); err == nil {
		kids, _ = obj.(core.Array)
	}

	newKids := make(core.Array, 0, len(kids))
	leaves := 0
	for _, kid := range kids {
		kidRef, ok := kid.(core.IndirectRef)
		if !ok || deleted[kidRef] {
			continue
		}
		kidDict, ok := d.Objects[kidRef].(core.Dict)
		if !ok {
			continue
		}

		if pages.IsPagesNode(kidDict) {
			n := d.rebuildNode(kidRef, deleted, visited)
			if n == 0 {
				d.Delete(kidRef)
				continue
			}
			leaves += n
		} else {
			leaves++
		}
		newKids = append(newKids, kidRef)
	}

	node["Kids"] = newKids
	node["Count"] = core.Int(leaves)
	return leaves
}

// FlattenedPages walks the page tree and returns each page id with a copy of
// its dictionary carrying any inherited attributes.
func (d *Document) FlattenedPages() ([]core.IndirectRef, []core.Dict, error) {
	all, err := d.Pages()
	if err != nil {
		return nil, nil, err
	}
	refs := make([]core.IndirectRef, len(all))
	dicts := make([]core.Dict, len(all))
	for i, p := range all {
		refs[i] = p.Ref
		dicts[i] = p.Flattened()
	}
	return refs, dicts, nil
}

var _ pages.ObjectResolver = (*Document)(nil)
