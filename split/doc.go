// Package split partitions a document into several documents.
//
// Each output is a full clone of the source with every page outside its
// group deleted, so it is a standalone document holding exactly the group's
// pages in their original order. Groups come from a range spec:
//
//	parts, err := split.ByRanges(doc, "1, 2-3, 5", split.DefaultOptions())
//
// or from a fixed chunk size with [ByFixedSize]. The page count is always
// taken from a fresh walk of the page tree, never from a stored /Count.
//
// A failure in any group fails the whole call and no parts are returned.
package split
