package document

import (
	"github.com/zeebo/blake3"

	"github.com/tsawler/stitch/core"
	"github.com/tsawler/stitch/logging"
)

// Reachable returns the set of object ids reachable from the trailer.
func (d *Document) Reachable() map[core.IndirectRef]bool {
	seen := make(map[core.IndirectRef]bool, len(d.Objects))
	var queue []core.IndirectRef

	visit := func(obj core.Object) {
		core.Walk(obj, func(o core.Object) {
			ref, ok := o.(core.IndirectRef)
			if !ok || seen[ref] {
				return
			}
			if _, exists := d.Objects[ref]; !exists {
				return
			}
			seen[ref] = true
			queue = append(queue, ref)
		})
	}

	visit(d.Trailer)
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		visit(d.Objects[ref])
	}
	return seen
}

// Prune deletes objects that cannot be reached from the trailer and returns
// how many were removed.
func (d *Document) Prune() int {
	keep := d.Reachable()
	removed := 0
	for ref := range d.Objects {
		if !keep[ref] {
			delete(d.Objects, ref)
			removed++
		}
	}
	return removed
}

// Compact prunes unreachable objects, makes byte-identical non-structural
// objects share one id, and renumbers densely from 1. Annotations are never
// shared since each belongs to a single page. It returns the number
// of objects removed.
func (d *Document) Compact() int {
	pruned := d.Prune()

	first := make(map[[32]byte]core.IndirectRef)
	dups := make(map[core.IndirectRef]core.IndirectRef)
	for _, ref := range d.IDs() {
		obj := d.Objects[ref]
		if Classify(obj).Structural() || isAnnotation(obj) {
			continue
		}
		sum := blake3.Sum256(core.Encode(obj))
		if orig, ok := first[sum]; ok {
			dups[ref] = orig
			continue
		}
		first[sum] = ref
	}

	if len(dups) > 0 {
		mapping := make(map[core.IndirectRef]core.IndirectRef, len(d.Objects))
		for ref := range d.Objects {
			if orig, ok := dups[ref]; ok {
				mapping[ref] = orig
				continue
			}
			mapping[ref] = ref
		}
		for ref := range dups {
			delete(d.Objects, ref)
		}
		d.remap(mapping)
	}

	d.Renumber()

	logging.Logger().Debug("compacted document", "pruned", pruned, "shared", len(dups), "objects", d.Len())
	return pruned + len(dups)
}

// isAnnotation reports whether obj is an annotation dictionary: /Type /Annot,
// or an untyped dictionary with both /Subtype and /Rect.
func isAnnotation(obj core.Object) bool {
	dict, ok := obj.(core.Dict)
	if !ok {
		return false
	}
	if typ, ok := dict.GetName("Type"); ok {
		return typ == "Annot"
	}
	return dict.Has("Subtype") && dict.Has("Rect")
}
