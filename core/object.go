package core

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Object is any PDF object: Null, Bool, Int, Real, String, Name, Array,
// Dict, *Stream or IndirectRef.
type Object interface {
	Type() ObjectType
	String() string
}

// ObjectType identifies the concrete kind of an Object.
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjReal
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjIndirect
)

var objectTypeNames = [...]string{"Null", "Bool", "Int", "Real", "String", "Name", "Array", "Dict", "Stream", "IndirectRef"}

func (t ObjectType) String() string {
	if t >= 0 && int(t) < len(objectTypeNames) {
		return objectTypeNames[t]
	}
	return "Unknown"
}

type (
	// Null is the null object. A dictionary entry with a null value is
	// equivalent to an absent entry.
	Null struct{}

	Bool bool
	Int  int64
	Real float64

	// String holds the raw bytes of a string object. Text strings may be
	// Latin-1 or UTF-16BE; see DecodeTextString.
	String string

	// Name holds a name without its leading slash, with #XX escapes decoded.
	Name string

	Array []Object

	// Dict is a dictionary. Keys are names without the leading slash.
	Dict map[string]Object
)

func (Null) Type() ObjectType   { return ObjNull }
func (Bool) Type() ObjectType   { return ObjBool }
func (Int) Type() ObjectType    { return ObjInt }
func (Real) Type() ObjectType   { return ObjReal }
func (String) Type() ObjectType { return ObjString }
func (Name) Type() ObjectType   { return ObjName }
func (Array) Type() ObjectType  { return ObjArray }
func (Dict) Type() ObjectType   { return ObjDict }

func (Null) String() string     { return "null" }
func (b Bool) String() string   { return strconv.FormatBool(bool(b)) }
func (i Int) String() string    { return strconv.FormatInt(int64(i), 10) }
func (r Real) String() string   { return string(appendReal(nil, float64(r))) }
func (s String) String() string { return string(s) }
func (n Name) String() string   { return string(appendName(nil, string(n))) }
func (a Array) String() string  { return string(Encode(a)) }
func (d Dict) String() string   { return string(Encode(d)) }

// lookup returns d[key] as a T.
func lookup[T Object](d Dict, key string) (T, bool) {
	v, ok := d[key].(T)
	return v, ok
}

// Get returns the value for key, or nil.
func (d Dict) Get(key string) Object { return d[key] }

// Has reports whether key is present.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

func (d Dict) GetName(key string) (Name, bool)               { return lookup[Name](d, key) }
func (d Dict) GetInt(key string) (Int, bool)                 { return lookup[Int](d, key) }
func (d Dict) GetReal(key string) (Real, bool)               { return lookup[Real](d, key) }
func (d Dict) GetBool(key string) (Bool, bool)               { return lookup[Bool](d, key) }
func (d Dict) GetString(key string) (String, bool)           { return lookup[String](d, key) }
func (d Dict) GetArray(key string) (Array, bool)             { return lookup[Array](d, key) }
func (d Dict) GetDict(key string) (Dict, bool)               { return lookup[Dict](d, key) }
func (d Dict) GetStream(key string) (*Stream, bool)          { return lookup[*Stream](d, key) }
func (d Dict) GetIndirectRef(key string) (IndirectRef, bool) { return lookup[IndirectRef](d, key) }

// Keys returns the keys in sorted order.
func (d Dict) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// Stream is a stream object. Data holds the body as stored, still encoded
// with the filters named in Dict.
type Stream struct {
	Dict    Dict
	Data    []byte
	decoded []byte
}

func (s *Stream) Type() ObjectType { return ObjStream }
func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict, len(s.Data))
}

// Decoded returns Decode's result, caching it on the stream.
func (s *Stream) Decoded() ([]byte, error) {
	if s.decoded != nil {
		return s.decoded, nil
	}
	data, err := s.Decode()
	if err != nil {
		return nil, err
	}
	s.decoded = data
	return data, nil
}

// IndirectRef refers to an object by number and generation.
type IndirectRef struct {
	Number     int
	Generation int
}

func (r IndirectRef) Type() ObjectType { return ObjIndirect }
func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

// IndirectObject is an object together with the id it was defined under.
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}
