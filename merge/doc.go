// Package merge combines several documents into one.
//
// Each input is cloned and renumbered into its own id range, so the inputs
// are never modified. The pages of every input are collected in order and
// hung directly under a single Pages node; inheritable attributes are copied
// onto each page first so its appearance does not depend on the tree it came
// from. One catalog is kept, source outlines are dropped, and the result is
// renumbered densely and compacted:
//
//	out, err := merge.DocumentsDefault([]*document.Document{a, b})
//
// Either a complete document or an error is returned.
package merge
