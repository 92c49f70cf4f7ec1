package merge_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/stitch/core"
	"github.com/tsawler/stitch/document"
	"github.com/tsawler/stitch/internal/testpdf"
	"github.com/tsawler/stitch/merge"
)

func mustCatalog(t *testing.T, d *document.Document) (core.IndirectRef, core.Dict) {
	t.Helper()
	ref, catalog, err := d.Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	return ref, catalog
}

func mustRoot(t *testing.T, d *document.Document) core.Dict {
	t.Helper()
	_, catalog := mustCatalog(t, d)
	obj, err := d.Resolve(catalog.Get("Pages"))
	if err != nil {
		t.Fatalf("failed to resolve /Pages: %v", err)
	}
	root, ok := obj.(core.Dict)
	if !ok {
		t.Fatalf("/Pages is %T", obj)
	}
	return root
}

// assertValid checks the structural invariants of a merged document.
func assertValid(t *testing.T, d *document.Document) {
	t.Helper()

	for ref, obj := range d.Objects {
		core.Walk(obj, func(o core.Object) {
			if r, ok := o.(core.IndirectRef); ok {
				if _, exists := d.Objects[r]; !exists {
					t.Errorf("object %v holds dangling reference %v", ref, r)
				}
			}
		})
	}

	for i, ref := range d.IDs() {
		if ref.Number != i+1 || ref.Generation != 0 {
			t.Errorf("ids are not dense: position %d holds %v", i, ref)
			break
		}
	}
	if d.MaxID != d.Len() {
		t.Errorf("MaxID = %d, want %d", d.MaxID, d.Len())
	}

	all, err := d.Pages()
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	_, catalog := mustCatalog(t, d)
	rootRef, _ := catalog.GetIndirectRef("Pages")
	root := mustRoot(t, d)
	if count, _ := root.GetInt("Count"); int(count) != len(all) {
		t.Errorf("root /Count = %d, want %d", count, len(all))
	}
	for _, p := range all {
		if p.Parent != rootRef {
			t.Errorf("page %v parent = %v, want %v", p.Ref, p.Parent, rootRef)
		}
		if parent, _ := p.Dict().GetIndirectRef("Parent"); parent != rootRef {
			t.Errorf("page %v /Parent = %v, want %v", p.Ref, parent, rootRef)
		}
	}
}

func TestMergeTwoDocuments(t *testing.T) {
	a := testpdf.New(testpdf.Options{Pages: 3, Prefix: "a"})
	b := testpdf.New(testpdf.Options{Pages: 2, Prefix: "b"})

	out, err := merge.DocumentsDefault([]*document.Document{a, b})
	if err != nil {
		t.Fatalf("DocumentsDefault() error = %v", err)
	}
	assertValid(t, out)

	want := append(testpdf.Range("a", 1, 3), testpdf.Range("b", 1, 2)...)
	if diff := cmp.Diff(want, testpdf.Labels(t, out)); diff != "" {
		t.Errorf("page order mismatch (-want +got):\n%s", diff)
	}
	if count, _ := mustRoot(t, out).GetInt("Count"); count != 5 {
		t.Errorf("/Count = %d, want 5", count)
	}
	if _, catalog := mustCatalog(t, out); catalog.Has("Outlines") {
		t.Error("merged catalog should have no /Outlines")
	}
}

func TestMergeSingleDocument(t *testing.T) {
	src := testpdf.New(testpdf.Options{Pages: 4, Nested: true, Title: "Only"})

	out, err := merge.DocumentsDefault([]*document.Document{src})
	if err != nil {
		t.Fatalf("DocumentsDefault() error = %v", err)
	}
	assertValid(t, out)

	if diff := cmp.Diff(testpdf.Range("page", 1, 4), testpdf.Labels(t, out)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if title, _ := out.Info().GetString("Title"); core.DecodeTextString(title) != "Only" {
		t.Errorf("Info /Title = %q, want Only", title)
	}
	if kids, _ := mustRoot(t, out).GetArray("Kids"); len(kids) != 4 {
		t.Errorf("root has %d kids, want 4 pages hung directly under it", len(kids))
	}
}

func TestMergeLeavesInputsUntouched(t *testing.T) {
	a := testpdf.New(testpdf.Options{Pages: 2, Prefix: "a"})
	b := testpdf.New(testpdf.Options{Pages: 2, Prefix: "b"})
	beforeA, beforeB := a.IDs(), b.IDs()

	if _, err := merge.DocumentsDefault([]*document.Document{a, b}); err != nil {
		t.Fatalf("DocumentsDefault() error = %v", err)
	}

	if diff := cmp.Diff(beforeA, a.IDs()); diff != "" {
		t.Errorf("first input ids changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(beforeB, b.IDs()); diff != "" {
		t.Errorf("second input ids changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(testpdf.Range("b", 1, 2), testpdf.Labels(t, b)); diff != "" {
		t.Errorf("second input labels changed (-want +got):\n%s", diff)
	}
}

func TestMergeFlattensInheritedAttributes(t *testing.T) {
	a := testpdf.New(testpdf.Options{Pages: 1, Prefix: "a"})
	b := testpdf.New(testpdf.Options{Pages: 2, Prefix: "b", Nested: true})
	small := core.Array{core.Int(0), core.Int(0), core.Int(100), core.Int(200)}
	bRoot := mustRoot(t, b)
	bRoot["MediaBox"] = small
	bRoot["Rotate"] = core.Int(90)

	out, err := merge.DocumentsDefault([]*document.Document{a, b})
	if err != nil {
		t.Fatalf("DocumentsDefault() error = %v", err)
	}
	assertValid(t, out)

	all, err := out.Pages()
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	tests := []struct {
		page         int
		width        float64
		height       float64
		wantRotation int
	}{
		{0, 612, 792, 0},
		{1, 100, 200, 90},
		{2, 100, 200, 90},
	}
	for _, tt := range tests {
		p := all[tt.page]
		w, _ := p.Width()
		h, _ := p.Height()
		if w != tt.width || h != tt.height {
			t.Errorf("page %d size = %vx%v, want %vx%v", tt.page+1, w, h, tt.width, tt.height)
		}
		if r := p.Rotate(); r != tt.wantRotation {
			t.Errorf("page %d rotation = %d, want %d", tt.page+1, r, tt.wantRotation)
		}
		if !p.Dict().Has("MediaBox") {
			t.Errorf("page %d should carry its own /MediaBox", tt.page+1)
		}
	}
}

func TestMergeCatalogAndPagesPolicy(t *testing.T) {
	a := testpdf.New(testpdf.Options{Pages: 1, Prefix: "a"})
	b := testpdf.New(testpdf.Options{Pages: 1, Prefix: "b"})

	_, catA := mustCatalog(t, a)
	catA["Lang"] = core.String("en")
	_, catB := mustCatalog(t, b)
	catB["PageMode"] = core.Name("UseNone")

	rootA := mustRoot(t, a)
	rootA["Marker"] = core.Name("A")
	rootB := mustRoot(t, b)
	rootB["Marker"] = core.Name("B")
	rootB["Extra"] = core.Int(1)

	out, err := merge.DocumentsDefault([]*document.Document{a, b})
	if err != nil {
		t.Fatalf("DocumentsDefault() error = %v", err)
	}

	_, catalog := mustCatalog(t, out)
	if mode, _ := catalog.GetName("PageMode"); mode != "UseNone" {
		t.Errorf("catalog /PageMode = %v, want the last catalog's content", catalog.Get("PageMode"))
	}
	if catalog.Has("Lang") {
		t.Error("catalog content should come from the last catalog")
	}

	root := mustRoot(t, out)
	if marker, _ := root.GetName("Marker"); marker != "A" {
		t.Errorf("root /Marker = %v, want the first value", marker)
	}
	if extra, _ := root.GetInt("Extra"); extra != 1 {
		t.Errorf("root /Extra = %v, want key added from later Pages node", root.Get("Extra"))
	}
	if root.Has("Parent") {
		t.Error("root Pages node must not have /Parent")
	}
}

func TestMergeDropsSourceOutlines(t *testing.T) {
	a := testpdf.New(testpdf.Options{Pages: 2})
	all, err := a.Pages()
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	outlines := a.Add(core.Dict{"Type": core.Name("Outlines")})
	item := a.Add(core.Dict{
		"Type":   core.Name("Outline"),
		"Title":  core.String("Chapter"),
		"Parent": outlines,
		"Dest":   core.Array{all[0].Ref, core.Name("Fit")},
	})
	a.Objects[outlines].(core.Dict)["First"] = item
	a.Objects[outlines].(core.Dict)["Last"] = item
	_, catalog := mustCatalog(t, a)
	catalog["Outlines"] = outlines

	out, err := merge.DocumentsDefault([]*document.Document{a})
	if err != nil {
		t.Fatalf("DocumentsDefault() error = %v", err)
	}
	assertValid(t, out)

	if _, catalog := mustCatalog(t, out); catalog.Has("Outlines") {
		t.Error("merged catalog should have no /Outlines")
	}
	for ref, obj := range out.Objects {
		if k := document.Classify(obj); k == document.KindOutlines || k == document.KindOutline {
			t.Errorf("object %v is a source outline (%v)", ref, k)
		}
	}
}

func TestMergeBookmarks(t *testing.T) {
	a := testpdf.New(testpdf.Options{Pages: 2, Prefix: "a"})
	b := testpdf.New(testpdf.Options{Pages: 3, Prefix: "b"})
	c := testpdf.New(testpdf.Options{Pages: 1, Prefix: "c"})

	opts := merge.DefaultOptions()
	opts.Bookmarks = true
	opts.Titles = []string{"Intro", "Résumé"}

	out, err := merge.Documents([]*document.Document{a, b, c}, opts)
	if err != nil {
		t.Fatalf("Documents() error = %v", err)
	}
	assertValid(t, out)

	_, catalog := mustCatalog(t, out)
	obj, err := out.Resolve(catalog.Get("Outlines"))
	if err != nil {
		t.Fatalf("failed to resolve /Outlines: %v", err)
	}
	root, ok := obj.(core.Dict)
	if !ok {
		t.Fatalf("/Outlines is %T", obj)
	}
	if count, _ := root.GetInt("Count"); count != 3 {
		t.Errorf("outline /Count = %d, want 3", count)
	}

	all, err := out.Pages()
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	wantTitles := []string{"Intro", "Résumé", "Document 3"}
	wantPages := []core.IndirectRef{all[0].Ref, all[2].Ref, all[5].Ref}

	var gotTitles []string
	var gotPages []core.IndirectRef
	next := root.Get("First")
	for next != nil {
		itemObj, err := out.Resolve(next)
		if err != nil {
			t.Fatalf("failed to resolve outline item: %v", err)
		}
		item := itemObj.(core.Dict)
		title, _ := item.GetString("Title")
		gotTitles = append(gotTitles, core.DecodeTextString(title))
		dest, _ := item.GetArray("Dest")
		gotPages = append(gotPages, dest[0].(core.IndirectRef))
		next = item.Get("Next")
	}

	if diff := cmp.Diff(wantTitles, gotTitles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantPages, gotPages); diff != "" {
		t.Errorf("destinations mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeBookmarkForEmptyInput(t *testing.T) {
	a := testpdf.New(testpdf.Options{Pages: 0, Prefix: "a"})
	b := testpdf.New(testpdf.Options{Pages: 2, Prefix: "b"})

	out, err := merge.Documents([]*document.Document{a, b}, merge.Options{Bookmarks: true})
	if err != nil {
		t.Fatalf("Documents() error = %v", err)
	}
	assertValid(t, out)

	all, err := out.Pages()
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	_, catalog := mustCatalog(t, out)
	rootObj, _ := out.Resolve(catalog.Get("Outlines"))
	firstObj, _ := out.Resolve(rootObj.(core.Dict).Get("First"))
	dest, _ := firstObj.(core.Dict).GetArray("Dest")
	if dest[0] != all[0].Ref {
		t.Errorf("bookmark for a pageless input points at %v, want first page %v", dest[0], all[0].Ref)
	}
}

func TestMergeVersion(t *testing.T) {
	a := testpdf.New(testpdf.Options{Pages: 1, Version: "1.4"})
	b := testpdf.New(testpdf.Options{Pages: 1, Version: "1.6"})

	out, err := merge.DocumentsDefault([]*document.Document{a, b})
	if err != nil {
		t.Fatalf("DocumentsDefault() error = %v", err)
	}
	if out.Version != "1.6" {
		t.Errorf("Version = %q, want 1.6", out.Version)
	}

	out, err = merge.Documents([]*document.Document{a, b}, merge.Options{Version: "2.0"})
	if err != nil {
		t.Fatalf("Documents() error = %v", err)
	}
	if out.Version != "2.0" {
		t.Errorf("Version = %q, want 2.0", out.Version)
	}
}

func TestMergeSharesDuplicateObjects(t *testing.T) {
	a := testpdf.New(testpdf.Options{Pages: 2, Prefix: "a"})
	b := testpdf.New(testpdf.Options{Pages: 2, Prefix: "b"})

	out, err := merge.DocumentsDefault([]*document.Document{a, b})
	if err != nil {
		t.Fatalf("DocumentsDefault() error = %v", err)
	}

	fonts := 0
	for _, obj := range out.Objects {
		if d, ok := obj.(core.Dict); ok {
			if typ, _ := d.GetName("Type"); typ == "Font" {
				fonts++
			}
		}
	}
	if fonts != 1 {
		t.Errorf("found %d font objects, want the identical fonts shared as 1", fonts)
	}
}

func TestMergeErrors(t *testing.T) {
	noCatalog := document.New("1.4")
	noCatalog.Add(core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{}, "Count": core.Int(0)})

	noPages := document.New("1.4")
	noPages.Trailer["Root"] = noPages.Add(core.Dict{"Type": core.Name("Catalog")})

	tests := []struct {
		name    string
		docs    []*document.Document
		wantErr error
	}{
		{"no inputs", nil, merge.ErrCatalogNotFound},
		{"no catalog", []*document.Document{noCatalog}, merge.ErrCatalogNotFound},
		{"no pages", []*document.Document{noPages}, merge.ErrPagesNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := merge.DocumentsDefault(tt.docs)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DocumentsDefault() error = %v, want %v", err, tt.wantErr)
			}
			if out != nil {
				t.Error("expected no document on error")
			}
		})
	}
}

func TestMergePageTreeCycle(t *testing.T) {
	a := testpdf.New(testpdf.Options{Pages: 1})
	_, catalog := mustCatalog(t, a)
	rootRef, _ := catalog.GetIndirectRef("Pages")
	root := mustRoot(t, a)
	root["Kids"] = append(root["Kids"].(core.Array), rootRef)

	if _, err := merge.DocumentsDefault([]*document.Document{a}); err == nil {
		t.Error("expected an error for a cyclic page tree")
	}
}
