// Package document holds a PDF file as an in-memory object graph and
// provides the graph operations merging and splitting are built from.
//
// A [Document] maps object ids to objects. Operations keep the graph valid:
// [Document.RenumberFrom] rewrites every reference when ids change,
// [Document.DeletePages] unlinks pages and repairs the page tree, and
// [Document.Prune] and [Document.Compact] drop what is no longer reachable
// from the trailer. [Document.Clone] gives callers an independent copy to
// mutate.
package document
