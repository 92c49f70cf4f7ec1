package document

import (
	"github.com/tsawler/stitch/core"
	"github.com/tsawler/stitch/logging"
)

// RenumberFrom assigns new ids start, start+1, ... to the objects in
// ascending order of their current ids, all with generation 0. Every
// reference in the objects, the trailer and pending bookmarks is rewritten.
// References to objects that do not exist become null. It returns the new
// MaxID, which is start-1 for an empty document.
func (d *Document) RenumberFrom(start int) int {
	ids := d.IDs()
	mapping := make(map[core.IndirectRef]core.IndirectRef, len(ids))
	for i, ref := range ids {
		mapping[ref] = core.IndirectRef{Number: start + i}
	}
	d.remap(mapping)

	d.MaxID = start + len(ids) - 1
	logging.Logger().Debug("renumbered objects", "count", len(ids), "first", start, "max_id", d.MaxID)
	return d.MaxID
}

// Renumber assigns dense ids starting at 1.
func (d *Document) Renumber() {
	d.RenumberFrom(1)
}

// remap moves every object to mapping[id] and rewrites references through
// mapping. Objects whose id has no mapping are dropped, and references that
// have no mapping become null.
func (d *Document) remap(mapping map[core.IndirectRef]core.IndirectRef) {
	fn := func(ref core.IndirectRef) (core.IndirectRef, bool) {
		r, ok := mapping[ref]
		return r, ok
	}

	objects := make(map[core.IndirectRef]core.Object, len(mapping))
	for old, obj := range d.Objects {
		if nu, ok := mapping[old]; ok {
			objects[nu] = core.MapRefs(obj, fn)
		}
	}
	d.Objects = objects
	d.Trailer = core.MapRefs(d.Trailer, fn).(core.Dict)

	walkBookmarks(d.Bookmarks, func(b *Bookmark) {
		if r, ok := mapping[b.Page]; ok {
			b.Page = r
		} else {
			b.Page = core.IndirectRef{}
		}
	})
}

// scrub removes references to objects that no longer exist.
func (d *Document) scrub() {
	mapping := make(map[core.IndirectRef]core.IndirectRef, len(d.Objects))
	for ref := range d.Objects {
		mapping[ref] = ref
	}
	d.remap(mapping)
}
