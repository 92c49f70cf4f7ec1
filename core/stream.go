package core

import (
	"errors"
	"fmt"

	"github.com/tsawler/stitch/internal/filters"
)

// ErrUnsupportedFilter is returned by Decode for filters it recognises but
// cannot decode.
var ErrUnsupportedFilter = errors.New("core: unsupported stream filter")

// Decode returns the stream body with its /Filter chain undone. Flate,
// ASCIIHex, ASCII85 and RunLength are supported. Image codecs are not:
// image streams are copied as stored and never need decoding.
func (s *Stream) Decode() ([]byte, error) {
	names, parms, err := s.filterChain()
	if err != nil {
		return nil, err
	}

	data := s.Data
	for i, name := range names {
		data, err = decodeFilter(data, name, parms[i])
		if err != nil {
			if len(names) == 1 {
				return nil, err
			}
			return nil, fmt.Errorf("filter %d of %d: %w", i+1, len(names), err)
		}
	}
	return data, nil
}

// filterChain returns the filter names in application order and the
// /DecodeParms dictionary for each, nil where none is given.
func (s *Stream) filterChain() ([]Name, []Dict, error) {
	var names []Name
	switch f := s.Dict.Get("Filter").(type) {
	case nil:
		return nil, nil, nil
	case Name:
		names = []Name{f}
	case Array:
		for i, v := range f {
			n, ok := v.(Name)
			if !ok {
				return nil, nil, fmt.Errorf("/Filter element %d is %s", i, v.Type())
			}
			names = append(names, n)
		}
	default:
		return nil, nil, fmt.Errorf("/Filter is %s, not a name or array", f.Type())
	}

	parms := make([]Dict, len(names))
	switch p := s.Dict.Get("DecodeParms").(type) {
	case Dict:
		for i := range parms {
			parms[i] = p
		}
	case Array:
		for i := range min(len(p), len(parms)) {
			parms[i], _ = p[i].(Dict)
		}
	}
	return names, parms, nil
}

func decodeFilter(data []byte, name Name, parms Dict) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, predictor(parms))
	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)
	case "RunLengthDecode", "RL":
		return filters.RunLengthDecode(data)
	case "LZWDecode", "LZW", "CCITTFaxDecode", "CCF", "JBIG2Decode", "DCTDecode", "DCT", "JPXDecode", "Crypt":
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, name)
	}
	return nil, fmt.Errorf("unknown filter /%s", name)
}

// predictor reads the FlateDecode entries of a /DecodeParms dictionary.
func predictor(parms Dict) filters.Predictor {
	get := func(key string) int {
		v, _ := parms.GetInt(key)
		return int(v)
	}
	return filters.Predictor{
		Predictor:        get("Predictor"),
		Colors:           get("Colors"),
		BitsPerComponent: get("BitsPerComponent"),
		Columns:          get("Columns"),
	}
}
