// Package filters implements the stream filters needed to read and write
// document structure.
//
// Only structural streams are ever decoded: cross-reference streams and
// object streams. Page content and images are copied byte for byte and
// the image codecs (DCT, JPX, JBIG2, CCITT) are not implemented.
//
// Decoding:
//
//	data, err := filters.FlateDecode(raw, filters.Predictor{Predictor: 12, Columns: 5})
//	data, err := filters.ASCIIHexDecode(raw)
//	data, err := filters.ASCII85Decode(raw)
//	data, err := filters.RunLengthDecode(raw)
//
// FlateDecode understands TIFF predictor 2 and the PNG predictors 10 to 15,
// which is how xref streams are usually stored.
//
// Encoding:
//
//	raw, err := filters.FlateEncode(data)
package filters
