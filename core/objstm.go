package core

import (
	"bytes"
	"fmt"
)

// ObjectStream gives access to the objects packed in a /Type /ObjStm
// stream. The body is decoded once, on first use.
type ObjectStream struct {
	stream *Stream
	n      int
	first  int

	data    []byte
	entries []objStmEntry
	index   map[int]int // object number -> position in entries
	cache   map[int]Object
}

type objStmEntry struct {
	num    int
	offset int
}

// NewObjectStream checks the /Type, /N and /First entries of stream.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("object stream is nil")
	}
	if typ, _ := stream.Dict.GetName("Type"); typ != "ObjStm" {
		return nil, fmt.Errorf("stream /Type is %v, not /ObjStm", stream.Dict.Get("Type"))
	}
	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream /N is %v", stream.Dict.Get("N"))
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream /First is %v", stream.Dict.Get("First"))
	}
	return &ObjectStream{stream: stream, n: int(n), first: int(first)}, nil
}

// N returns the number of objects the stream declares.
func (s *ObjectStream) N() int {
	return s.n
}

// Extends returns the /Extends reference, if any.
func (s *ObjectStream) Extends() (IndirectRef, bool) {
	return s.stream.Dict.GetIndirectRef("Extends")
}

// load decodes the body and reads the header of number/offset pairs.
func (s *ObjectStream) load() error {
	if s.index != nil {
		return nil
	}
	data, err := s.stream.Decode()
	if err != nil {
		return fmt.Errorf("failed to decode object stream: %w", err)
	}
	if s.first > len(data) {
		return fmt.Errorf("object stream /First %d past end of %d bytes", s.first, len(data))
	}

	p := NewParser(bytes.NewReader(data[:s.first]))
	entries := make([]objStmEntry, 0, s.n)
	index := make(map[int]int, s.n)
	for i := range s.n {
		num, err1 := p.ParseObject()
		off, err2 := p.ParseObject()
		numInt, ok1 := num.(Int)
		offInt, ok2 := off.(Int)
		if err1 != nil || err2 != nil || !ok1 || !ok2 {
			return fmt.Errorf("object stream header pair %d is malformed", i)
		}
		if offInt < 0 || s.first+int(offInt) > len(data) {
			return fmt.Errorf("object stream entry %d offset %d out of range", i, offInt)
		}
		// The first occurrence of a number wins.
		if _, dup := index[int(numInt)]; !dup {
			index[int(numInt)] = len(entries)
		}
		entries = append(entries, objStmEntry{num: int(numInt), offset: int(offInt)})
	}

	s.data = data
	s.entries = entries
	s.index = index
	s.cache = make(map[int]Object, s.n)
	return nil
}

// ObjectNumbers lists the object numbers in header order.
func (s *ObjectStream) ObjectNumbers() ([]int, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	nums := make([]int, len(s.entries))
	for i, e := range s.entries {
		nums[i] = e.num
	}
	return nums, nil
}

// GetObjectByIndex returns the object at position i of the header and its
// object number.
func (s *ObjectStream) GetObjectByIndex(i int) (Object, int, error) {
	if err := s.load(); err != nil {
		return nil, 0, err
	}
	if i < 0 || i >= len(s.entries) {
		return nil, 0, fmt.Errorf("object stream index %d out of range [0, %d)", i, len(s.entries))
	}
	e := s.entries[i]
	if obj, ok := s.cache[i]; ok {
		return obj, e.num, nil
	}

	start := s.first + e.offset
	end := len(s.data)
	if i+1 < len(s.entries) {
		if next := s.first + s.entries[i+1].offset; next > start && next < end {
			end = next
		}
	}
	obj, err := NewParser(bytes.NewReader(s.data[start:end])).ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("object %d in object stream: %w", e.num, err)
	}
	s.cache[i] = obj
	return obj, e.num, nil
}

// GetObjectByNumber returns object num and its position in the header.
func (s *ObjectStream) GetObjectByNumber(num int) (Object, int, error) {
	if err := s.load(); err != nil {
		return nil, 0, err
	}
	i, ok := s.index[num]
	if !ok {
		return nil, 0, fmt.Errorf("object %d not in object stream", num)
	}
	obj, _, err := s.GetObjectByIndex(i)
	return obj, i, err
}
