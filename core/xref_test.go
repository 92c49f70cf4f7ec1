package core

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestXRefTable(t *testing.T) {
	table := NewXRefTable()
	if table.Size() != 0 {
		t.Fatalf("new table Size() = %d", table.Size())
	}
	if _, ok := table.Get(1); ok {
		t.Error("Get on empty table found an entry")
	}

	table.Set(1, &XRefEntry{Type: XRefEntryUncompressed, Offset: 15, InUse: true})
	table.Set(1, &XRefEntry{Type: XRefEntryUncompressed, Offset: 99, InUse: true})
	table.Set(4, &XRefEntry{Type: XRefEntryFree})

	if table.Size() != 2 {
		t.Errorf("Size() = %d, want 2", table.Size())
	}
	if e, ok := table.Get(1); !ok || e.Offset != 99 {
		t.Errorf("Get(1) = %+v, %v; want offset 99", e, ok)
	}
}

func TestXRefEntryTypeString(t *testing.T) {
	for typ, want := range map[XRefEntryType]string{
		XRefEntryFree:         "free",
		XRefEntryUncompressed: "uncompressed",
		XRefEntryCompressed:   "compressed",
		XRefEntryType(7):      "XRefEntryType(7)",
	} {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(typ), got, want)
		}
	}
}

func TestFindXRef(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int64
		wantErr bool
	}{
		{"lf", "%PDF-1.4\nstartxref\n1234\n%%EOF\n", 1234, false},
		{"crlf", "%PDF-1.4\r\nstartxref\r\n99\r\n%%EOF\r\n", 99, false},
		{"same line", "startxref 42 %%EOF", 42, false},
		{"last wins", "startxref\n10\n%%EOF\nstartxref\n20\n%%EOF\n", 20, false},
		{"no eof marker", "startxref\n7\n", 7, false},
		{"long tail", "startxref\n5\n%%EOF\n" + strings.Repeat(" ", 900), 5, false},
		{"missing", "%PDF-1.4\n%%EOF\n", 0, true},
		{"no offset", "startxref\n", 0, true},
		{"bad offset", "startxref\nabc\n%%EOF", 0, true},
		{"negative offset", "startxref\n-5\n%%EOF", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewXRefParser(strings.NewReader(tt.content)).FindXRef()
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindXRef() err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FindXRef() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFindXRefOutsideWindow(t *testing.T) {
	content := "startxref\n5\n%%EOF\n" + strings.Repeat(" ", startXRefWindow)
	if _, err := NewXRefParser(strings.NewReader(content)).FindXRef(); err == nil {
		t.Error("found startxref outside the search window")
	}
}

func TestParseXRefTable(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		want        map[int]*XRefEntry
		wantTrailer Dict
	}{
		{
			name: "single subsection",
			content: "xref\n0 3\n" +
				"0000000000 65535 f \n" +
				"0000000015 00000 n \n" +
				"0000000079 00002 n \n" +
				"trailer\n<</Size 3 /Root 1 0 R>>\n",
			want: map[int]*XRefEntry{
				0: {Type: XRefEntryFree, Generation: 65535},
				1: {Type: XRefEntryUncompressed, Offset: 15, InUse: true},
				2: {Type: XRefEntryUncompressed, Offset: 79, Generation: 2, InUse: true},
			},
			wantTrailer: Dict{"Size": Int(3), "Root": IndirectRef{Number: 1}},
		},
		{
			name: "several subsections",
			content: "xref\n0 1\n0000000000 65535 f \n" +
				"5 2\n0000000300 00000 n \n0000000400 00001 f \n" +
				"trailer <</Size 7>>",
			want: map[int]*XRefEntry{
				0: {Type: XRefEntryFree, Generation: 65535},
				5: {Type: XRefEntryUncompressed, Offset: 300, InUse: true},
				6: {Type: XRefEntryFree, Offset: 400, Generation: 1},
			},
			wantTrailer: Dict{"Size": Int(7)},
		},
		{
			name:        "entries not 20 bytes wide",
			content:     "xref\r\n1 1\r\n17 0 n\r\ntrailer\r\n<</Size 2>>",
			want:        map[int]*XRefEntry{1: {Type: XRefEntryUncompressed, Offset: 17, InUse: true}},
			wantTrailer: Dict{"Size": Int(2)},
		},
		{
			name:        "empty subsection",
			content:     "xref\n3 0\ntrailer\n<<>>",
			want:        map[int]*XRefEntry{},
			wantTrailer: Dict{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewXRefParser(strings.NewReader(tt.content)).ParseXRef(0)
			if err != nil {
				t.Fatalf("ParseXRef() error = %v", err)
			}
			if table.IsStream {
				t.Error("IsStream = true for a classic table")
			}
			if diff := cmp.Diff(tt.want, table.Entries); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantTrailer, table.Trailer); diff != "" {
				t.Errorf("trailer mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseXRefAtOffset(t *testing.T) {
	prefix := "%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"
	content := prefix + "xref\n0 1\n0000000000 65535 f \ntrailer\n<</Size 1>>\n"

	table, err := NewXRefParser(strings.NewReader(content)).ParseXRef(int64(len(prefix)))
	if err != nil {
		t.Fatalf("ParseXRef() error = %v", err)
	}
	if table.Size() != 1 {
		t.Errorf("Size() = %d, want 1", table.Size())
	}
}

func TestParseXRefTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad flag", "xref\n0 1\n0000000000 65535 x \ntrailer\n<<>>"},
		{"short subsection", "xref\n0 2\n0000000000 65535 f \ntrailer\n<<>>"},
		{"missing trailer", "xref\n0 1\n0000000000 65535 f \n"},
		{"trailer not a dict", "xref\n0 1\n0000000000 65535 f \ntrailer\n[1 2]"},
		{"bad subsection header", "xref\n0 /One\n"},
		{"negative count", "xref\n0 -1\ntrailer\n<<>>"},
		{"junk", "xref\n(string)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewXRefParser(strings.NewReader(tt.content)).ParseXRef(0); err == nil {
				t.Error("ParseXRef() succeeded")
			}
		})
	}
}

func TestMergeXRefTables(t *testing.T) {
	older := NewXRefTable()
	older.Set(1, &XRefEntry{Type: XRefEntryUncompressed, Offset: 10, InUse: true})
	older.Set(2, &XRefEntry{Type: XRefEntryUncompressed, Offset: 20, InUse: true})
	older.Trailer = Dict{"Size": Int(3)}

	newer := NewXRefTable()
	newer.Set(2, &XRefEntry{Type: XRefEntryUncompressed, Offset: 200, InUse: true})
	newer.Set(3, &XRefEntry{Type: XRefEntryFree})
	newer.Trailer = Dict{"Size": Int(4), "Prev": Int(0)}

	merged := MergeXRefTables(older, newer)

	offsets := map[int]int64{}
	for num, e := range merged.Entries {
		offsets[num] = e.Offset
	}
	if diff := cmp.Diff(map[int]int64{1: 10, 2: 200, 3: 0}, offsets); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
	if size, _ := merged.Trailer.GetInt("Size"); size != 4 {
		t.Errorf("trailer /Size = %d, want 4", size)
	}

	if empty := MergeXRefTables(); empty.Size() != 0 || len(empty.Trailer) != 0 {
		t.Errorf("MergeXRefTables() = %+v, want empty", empty)
	}
}

func TestParseAllXRefsChain(t *testing.T) {
	body := "%PDF-1.4\n"
	first := len(body)
	body += "xref\n0 2\n0000000000 65535 f \n0000000009 00000 n \ntrailer\n<</Size 2 /Root 1 0 R>>\n"
	second := len(body)
	body += "xref\n1 1\n0000000500 00000 n \ntrailer\n<</Size 2 /Root 1 0 R /Prev " + strconv.Itoa(first) + ">>\n"
	body += "startxref\n" + strconv.Itoa(second) + "\n%%EOF\n"

	tables, err := NewXRefParser(strings.NewReader(body)).ParseAllXRefs()
	if err != nil {
		t.Fatalf("ParseAllXRefs() error = %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if _, hasPrev := tables[0].Trailer.GetInt("Prev"); hasPrev {
		t.Error("tables are not ordered oldest first")
	}
	if e, _ := MergeXRefTables(tables...).Get(1); e.Offset != 500 {
		t.Errorf("object 1 offset = %d, want 500 from the newer section", e.Offset)
	}
}
