package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Predictor holds the /DecodeParms entries that affect FlateDecode. The
// zero value means no prediction.
type Predictor struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int
}

// withDefaults fills unset fields with their PDF defaults.
func (p Predictor) withDefaults() Predictor {
	if p.Predictor == 0 {
		p.Predictor = 1
	}
	if p.Colors == 0 {
		p.Colors = 1
	}
	if p.BitsPerComponent == 0 {
		p.BitsPerComponent = 8
	}
	if p.Columns == 0 {
		p.Columns = 1
	}
	return p
}

// FlateDecode inflates zlib data and undoes the predictor, if any.
func FlateDecode(data []byte, pred Predictor) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}

	pred = pred.withDefaults()
	switch {
	case pred.Predictor == 1:
		return out, nil
	case pred.BitsPerComponent != 8:
		return nil, fmt.Errorf("flate: predictor with %d bits per component", pred.BitsPerComponent)
	case pred.Predictor == 2:
		return unpredictTIFF(out, pred.Colors, pred.Columns*pred.Colors)
	case pred.Predictor >= 10 && pred.Predictor <= 15:
		return unpredictPNG(out, pred.Colors, pred.Columns*pred.Colors)
	}
	return nil, fmt.Errorf("flate: unsupported predictor %d", pred.Predictor)
}

// FlateEncode compresses data at the best compression level, with no
// predictor.
func FlateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, fmt.Errorf("flate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	return buf.Bytes(), nil
}

// unpredictTIFF reverses TIFF predictor 2: each sample is stored as the
// difference from the sample bpp bytes to its left.
func unpredictTIFF(data []byte, bpp, rowLen int) ([]byte, error) {
	if len(data)%rowLen != 0 {
		return nil, fmt.Errorf("flate: %d bytes is not a whole number of %d-byte rows", len(data), rowLen)
	}
	out := bytes.Clone(data)
	for row := 0; row < len(out); row += rowLen {
		for i := row + bpp; i < row+rowLen; i++ {
			out[i] += out[i-bpp]
		}
	}
	return out, nil
}

// unpredictPNG reverses the PNG filters. Every row is prefixed with a
// filter type byte, which is dropped from the output.
func unpredictPNG(data []byte, bpp, rowLen int) ([]byte, error) {
	stride := rowLen + 1
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("flate: %d bytes is not a whole number of %d-byte rows", len(data), stride)
	}

	out := make([]byte, 0, len(data)/stride*rowLen)
	prev := make([]byte, rowLen)
	for off := 0; off < len(data); off += stride {
		filter, row := data[off], bytes.Clone(data[off+1:off+stride])
		for i := range row {
			var left, upLeft byte
			if i >= bpp {
				left, upLeft = row[i-bpp], prev[i-bpp]
			}
			up := prev[i]
			switch filter {
			case 0:
			case 1:
				row[i] += left
			case 2:
				row[i] += up
			case 3:
				row[i] += byte((int(left) + int(up)) / 2)
			case 4:
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("flate: unknown PNG filter %d in row %d", filter, off/stride)
			}
		}
		out = append(out, row...)
		prev = row
	}
	return out, nil
}

// paeth picks whichever of a (left), b (up) and c (upper left) is closest
// to a+b-c, preferring a then b on ties.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
