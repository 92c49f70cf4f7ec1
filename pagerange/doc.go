// Package pagerange implements the page selection language used to split
// documents.
//
// A range spec is a comma-separated list of page numbers and inclusive
// ranges:
//
//	1, 2-3, 5
//
// Each token becomes one [Group]: the pages it selects plus a label taken
// verbatim from the spec. [Validate] only checks syntax; [Parse] also checks
// the numbers against the document's page count.
//
// A fixed spec is a single chunk size. [Chunk] partitions the pages of a
// document into consecutive groups of that size, the last group holding the
// remainder, each labelled "start-end".
//
// [Complement] turns a group into the pages that must be deleted from a full
// copy of the document to leave only the group.
package pagerange
