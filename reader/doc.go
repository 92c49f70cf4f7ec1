// Package reader parses PDF files into [document.Document] values.
//
// A [Reader] locates the %PDF- header anywhere in the first kilobyte of
// input, follows the cross-reference chain from the last startxref
// (classic tables, cross-reference streams and hybrid files with /XRefStm)
// and loads objects on demand, including objects packed in object streams.
// When the cross-reference data is unusable the file is scanned for object
// headers instead.
//
// Most callers want the whole object graph:
//
//	doc, err := reader.Open("report.pdf")
//	if err != nil {
//	    return err
//	}
//	n, _ := doc.PageCount()
//
// Encrypted documents are rejected with [ErrEncrypted]. Objects that fail to
// parse are skipped with a warning on the package logger; the catalog itself
// must load.
package reader
