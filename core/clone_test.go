package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestClone tests that Clone produces independent deep copies
func TestClone(t *testing.T) {
	orig := Dict{
		"Type":  Name("Page"),
		"Kids":  Array{IndirectRef{Number: 3}, Array{Int(1), Int(2)}},
		"Inner": Dict{"A": String("x")},
	}

	cp := Clone(orig).(Dict)
	if diff := cmp.Diff(orig, cp); diff != "" {
		t.Fatalf("Clone() mismatch (-want +got):\n%s", diff)
	}

	cp["Inner"].(Dict)["A"] = String("changed")
	cp["Kids"].(Array)[1].(Array)[0] = Int(99)

	if orig["Inner"].(Dict)["A"] != String("x") {
		t.Error("nested dict shared with clone")
	}
	if orig["Kids"].(Array)[1].(Array)[0] != Int(1) {
		t.Error("nested array shared with clone")
	}
}

// TestCloneStream tests stream cloning
func TestCloneStream(t *testing.T) {
	s := &Stream{Dict: Dict{"Length": Int(3)}, Data: []byte("abc")}
	c := s.Clone()
	c.Data[0] = 'z'
	c.Dict["Length"] = Int(4)

	if string(s.Data) != "abc" {
		t.Errorf("original data changed to %q", s.Data)
	}
	if s.Dict["Length"] != Int(3) {
		t.Error("original dict changed")
	}
	if (*Stream)(nil).Clone() != nil {
		t.Error("nil stream clone should be nil")
	}
}

// TestMapRefs tests reference rewriting and dropping
func TestMapRefs(t *testing.T) {
	obj := Dict{
		"Keep":  IndirectRef{Number: 1},
		"Drop":  IndirectRef{Number: 2},
		"Array": Array{IndirectRef{Number: 1}, IndirectRef{Number: 2}, Int(7)},
	}

	got := MapRefs(obj, func(r IndirectRef) (IndirectRef, bool) {
		if r.Number == 2 {
			return r, false
		}
		return IndirectRef{Number: r.Number + 10}, true
	})

	want := Dict{
		"Keep":  IndirectRef{Number: 11},
		"Array": Array{IndirectRef{Number: 11}, Null{}, Int(7)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MapRefs() mismatch (-want +got):\n%s", diff)
	}

	if _, ok := obj["Drop"]; !ok {
		t.Error("MapRefs modified its input")
	}
}

// TestWalk tests that Walk visits nested objects
func TestWalk(t *testing.T) {
	obj := Array{Dict{"A": IndirectRef{Number: 4}}, &Stream{Dict: Dict{"F": IndirectRef{Number: 5}}}}

	var refs []int
	Walk(obj, func(o Object) {
		if r, ok := o.(IndirectRef); ok {
			refs = append(refs, r.Number)
		}
	})

	if diff := cmp.Diff([]int{4, 5}, refs); diff != "" {
		t.Errorf("Walk() refs mismatch (-want +got):\n%s", diff)
	}
}
