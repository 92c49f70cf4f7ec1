package core

// Clone returns a deep copy of obj. Scalars are returned as is; arrays,
// dictionaries and streams are copied recursively so the result shares no
// mutable state with the original.
func Clone(obj Object) Object {
	switch v := obj.(type) {
	case Array:
		return v.Clone()
	case Dict:
		return v.Clone()
	case *Stream:
		return v.Clone()
	default:
		return obj
	}
}

// Clone returns a deep copy of the array
func (a Array) Clone() Array {
	if a == nil {
		return nil
	}
	out := make(Array, len(a))
	for i, v := range a {
		out[i] = Clone(v)
	}
	return out
}

// Clone returns a deep copy of the dictionary
func (d Dict) Clone() Dict {
	if d == nil {
		return nil
	}
	out := make(Dict, len(d))
	for k, v := range d {
		out[k] = Clone(v)
	}
	return out
}

// Clone returns a deep copy of the stream. The decode cache is not carried over.
func (s *Stream) Clone() *Stream {
	if s == nil {
		return nil
	}
	return &Stream{
		Dict: s.Dict.Clone(),
		Data: append([]byte(nil), s.Data...),
	}
}

// Walk calls fn for obj and every object nested inside it, depth first.
// Indirect references are visited but not followed.
func Walk(obj Object, fn func(Object)) {
	fn(obj)
	switch v := obj.(type) {
	case Array:
		for _, e := range v {
			Walk(e, fn)
		}
	case Dict:
		for _, k := range v.Keys() {
			Walk(v[k], fn)
		}
	case *Stream:
		Walk(v.Dict, fn)
	}
}

// MapRefs returns a copy of obj with every indirect reference replaced by
// fn(ref). When fn reports false the reference is dropped: dictionary
// entries are removed and array slots become null.
func MapRefs(obj Object, fn func(IndirectRef) (IndirectRef, bool)) Object {
	switch v := obj.(type) {
	case IndirectRef:
		if r, ok := fn(v); ok {
			return r
		}
		return Null{}
	case Array:
		out := make(Array, len(v))
		for i, e := range v {
			out[i] = MapRefs(e, fn)
		}
		return out
	case Dict:
		out := make(Dict, len(v))
		for k, e := range v {
			if ref, ok := e.(IndirectRef); ok {
				r, keep := fn(ref)
				if !keep {
					continue
				}
				out[k] = r
				continue
			}
			out[k] = MapRefs(e, fn)
		}
		return out
	case *Stream:
		return &Stream{
			Dict: MapRefs(v.Dict, fn).(Dict),
			Data: v.Data,
		}
	default:
		return obj
	}
}
