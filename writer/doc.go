// Package writer serializes documents as PDF files.
//
// Objects are written in ascending id order followed by a classic
// cross-reference table and a trailer carrying /Size, /Root, /Info and /ID:
//
//	data, err := writer.Bytes(doc, writer.DefaultConfig())
//
// Streams without a /Filter are Flate-compressed when [Config.Compress] is
// set. The document passed in is never modified.
package writer
