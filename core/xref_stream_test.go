package core

import (
	"bytes"
	"compress/zlib"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// xrefStreamObject wraps entry data in "n 0 obj" with the given extra
// dictionary entries, Flate-compressing it when compress is set.
func xrefStreamObject(num int, extra string, data []byte, compress bool) []byte {
	filter := ""
	if compress {
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		w.Write(data)
		w.Close()
		data = buf.Bytes()
		filter = " /Filter /FlateDecode"
	}
	var out bytes.Buffer
	out.WriteString(strconv.Itoa(num) + " 0 obj\n<</Type /XRef " + extra + filter +
		" /Length " + strconv.Itoa(len(data)) + ">>\nstream\n")
	out.Write(data)
	out.WriteString("\nendstream\nendobj\n")
	return out.Bytes()
}

func TestXRefStreamDetection(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantStream bool
		wantErr    bool
	}{
		{"table", "xref\n0 6\n", false, false},
		{"table after whitespace", "\r\n xref\n", false, false},
		{"stream", "5 0 obj\n<</Type /XRef>>", true, false},
		{"neither", "invalid content", false, true},
		{"empty", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isStream, err := NewXRefParser(strings.NewReader(tt.content)).isXRefStream()
			if (err != nil) != tt.wantErr {
				t.Fatalf("isXRefStream() err = %v, wantErr %v", err, tt.wantErr)
			}
			if isStream != tt.wantStream {
				t.Errorf("isXRefStream() = %v, want %v", isStream, tt.wantStream)
			}
		})
	}
}

func TestReadBigEndianInt(t *testing.T) {
	tests := []struct {
		data  []byte
		width int
		want  int64
	}{
		{[]byte{0x42}, 1, 0x42},
		{[]byte{0x12, 0x34}, 2, 0x1234},
		{[]byte{0x12, 0x34, 0x56}, 3, 0x123456},
		{[]byte{0x00, 0x00, 0x10, 0x00}, 4, 4096},
		{[]byte{0xFF}, 0, 0},
		{[]byte{0x01}, 3, 1},
	}
	for _, tt := range tests {
		if got := readBigEndianInt(tt.data, tt.width); got != tt.want {
			t.Errorf("readBigEndianInt(%x, %d) = %d, want %d", tt.data, tt.width, got, tt.want)
		}
	}
}

func TestParseXRefStreamEntry(t *testing.T) {
	x := NewXRefParser(strings.NewReader(""))
	tests := []struct {
		name string
		data []byte
		w    []int
		want *XRefEntry
	}{
		{"free", []byte{0, 0, 0, 0xFF}, []int{1, 2, 1}, &XRefEntry{Type: XRefEntryFree, Generation: 255}},
		{"uncompressed", []byte{1, 0x01, 0x00, 2}, []int{1, 2, 1}, &XRefEntry{Type: XRefEntryUncompressed, Offset: 256, Generation: 2, InUse: true}},
		{"compressed", []byte{2, 0, 7, 4}, []int{1, 2, 1}, &XRefEntry{Type: XRefEntryCompressed, Offset: 7, Generation: 4, InUse: true}},
		{"type defaults to 1", []byte{0x03, 0xE8}, []int{0, 2, 0}, &XRefEntry{Type: XRefEntryUncompressed, Offset: 1000, InUse: true}},
		{"unknown type", []byte{9, 0, 1, 0}, []int{1, 2, 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := x.parseXRefStreamEntry(tt.data, tt.w)
			if err != nil {
				t.Fatal(err)
			}
			if n != len(tt.data) {
				t.Errorf("consumed %d bytes, want %d", n, len(tt.data))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("entry mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, _, err := x.parseXRefStreamEntry([]byte{1}, []int{1, 2, 1}); err == nil {
		t.Error("short entry accepted")
	}
}

func TestParseXRefStream(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0x00, 0xFF,
		0x01, 0x00, 0x0F, 0x00,
		0x01, 0x00, 0x64, 0x00,
		0x02, 0x00, 0x02, 0x01,
	}
	for _, compress := range []bool{false, true} {
		t.Run("compress="+strconv.FormatBool(compress), func(t *testing.T) {
			content := xrefStreamObject(5, "/Size 4 /W [1 2 1] /Root 1 0 R", data, compress)
			table, err := NewXRefParser(bytes.NewReader(content)).ParseXRef(0)
			if err != nil {
				t.Fatalf("ParseXRef() error = %v", err)
			}
			if !table.IsStream {
				t.Error("IsStream = false")
			}

			want := map[int]*XRefEntry{
				0: {Type: XRefEntryFree, Generation: 255},
				1: {Type: XRefEntryUncompressed, Offset: 15, InUse: true},
				2: {Type: XRefEntryUncompressed, Offset: 100, InUse: true},
				3: {Type: XRefEntryCompressed, Offset: 2, Generation: 1, InUse: true},
			}
			if diff := cmp.Diff(want, table.Entries); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}

			wantTrailer := Dict{"Size": Int(4), "Root": IndirectRef{Number: 1}}
			if diff := cmp.Diff(wantTrailer, table.Trailer); diff != "" {
				t.Errorf("trailer mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseXRefStreamWithIndex(t *testing.T) {
	data := []byte{
		0x01, 0x00, 0x64, 0x00,
		0x01, 0x00, 0xC8, 0x00,
		0x01, 0x01, 0x2C, 0x00,
		0x01, 0x01, 0x90, 0x00,
	}
	content := xrefStreamObject(5, "/Size 22 /W [1 2 1] /Index [10 2 20 2]", data, false)
	table, err := NewXRefParser(bytes.NewReader(content)).ParseXRef(0)
	if err != nil {
		t.Fatalf("ParseXRef() error = %v", err)
	}

	want := map[int]int64{10: 100, 11: 200, 20: 300, 21: 400}
	if table.Size() != len(want) {
		t.Errorf("Size() = %d, want %d", table.Size(), len(want))
	}
	for num, offset := range want {
		if e, ok := table.Get(num); !ok || e.Offset != offset {
			t.Errorf("entry %d = %+v, want offset %d", num, e, offset)
		}
	}
}

func TestXRefStreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing /Type", "5 0 obj\n<</Length 0>>\nstream\nendstream\nendobj\n"},
		{"wrong /Type", "5 0 obj\n<</Type /Page /Length 0>>\nstream\nendstream\nendobj\n"},
		{"not a stream", "5 0 obj\n<</Type /XRef>>\nendobj\n"},
		{"missing /Size", string(xrefStreamObject(5, "/W [1 2 1]", nil, false))},
		{"missing /W", string(xrefStreamObject(5, "/Size 10", nil, false))},
		{"short /W", string(xrefStreamObject(5, "/Size 10 /W [1 2]", nil, false))},
		{"zero /W", string(xrefStreamObject(5, "/Size 1 /W [0 0 0]", nil, false))},
		{"wide /W", string(xrefStreamObject(5, "/Size 1 /W [1 9 1]", nil, false))},
		{"odd /Index", string(xrefStreamObject(5, "/Size 1 /W [1 2 1] /Index [0]", nil, false))},
		{"truncated data", string(xrefStreamObject(5, "/Size 2 /W [1 2 1]", []byte{1, 0, 9, 0, 1}, false))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewXRefParser(strings.NewReader(tt.content)).parseXRefStream(); err == nil {
				t.Error("parseXRefStream() succeeded")
			}
		})
	}
}

// TestParseXRefStreamCompressedEntry tests that type 2 entries keep the
// object stream number and index
func TestParseXRefStreamCompressedEntry(t *testing.T) {
	xrefData := []byte{
		0x01, 0x00, 0x0F, 0x00, // Entry 1: offset 15
		0x02, 0x00, 0x01, 0x03, // Entry 2: in object stream 1 at index 3
	}
	content := "7 0 obj\n" +
		"<</Type /XRef /Size 3 /Index [1 2] /W [1 2 1] /Length " + strconv.Itoa(len(xrefData)) + ">>\n" +
		"stream\n" + string(xrefData) + "\nendstream\nendobj\n"

	parser := NewXRefParser(strings.NewReader(content))
	table, err := parser.ParseXRef(0)
	if err != nil {
		t.Fatalf("ParseXRef() error = %v", err)
	}

	entry, ok := table.Get(2)
	if !ok {
		t.Fatal("entry 2 not found")
	}
	if entry.Type != XRefEntryCompressed {
		t.Errorf("Type = %v, want %v", entry.Type, XRefEntryCompressed)
	}
	if entry.Offset != 1 || entry.Generation != 3 {
		t.Errorf("got stream %d index %d, want stream 1 index 3", entry.Offset, entry.Generation)
	}
}

// TestParseAllXRefsHybrid tests a classic table whose trailer points at an
// /XRefStm stream and a /Prev section
func TestParseAllXRefsHybrid(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")

	prevOffset := buf.Len()
	buf.WriteString("xref\n0 2\n0000000000 65535 f \n0000000009 00000 n \ntrailer\n<</Size 2>>\n")

	stmOffset := buf.Len()
	stmData := []byte{0x02, 0x00, 0x01, 0x00} // object 3 in object stream 1
	buf.WriteString("9 0 obj\n<</Type /XRef /Size 4 /Index [3 1] /W [1 2 1] /Length 4>>\nstream\n")
	buf.Write(stmData)
	buf.WriteString("\nendstream\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 1\n0000000000 65535 f \n2 1\n0000000100 00000 n \n")
	buf.WriteString("trailer\n<</Size 4 /Root 2 0 R /Prev " + strconv.Itoa(prevOffset) +
		" /XRefStm " + strconv.Itoa(stmOffset) + ">>\n")
	buf.WriteString("startxref\n" + strconv.Itoa(xrefOffset) + "\n%%EOF\n")

	parser := NewXRefParser(bytes.NewReader(buf.Bytes()))
	tables, err := parser.ParseAllXRefs()
	if err != nil {
		t.Fatalf("ParseAllXRefs() error = %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}

	merged := MergeXRefTables(tables...)
	if e, ok := merged.Get(1); !ok || e.Offset != 9 {
		t.Errorf("entry 1 = %+v, want offset 9 from /Prev section", e)
	}
	if e, ok := merged.Get(2); !ok || e.Offset != 100 {
		t.Errorf("entry 2 = %+v, want offset 100", e)
	}
	if e, ok := merged.Get(3); !ok || e.Type != XRefEntryCompressed {
		t.Errorf("entry 3 = %+v, want compressed entry from /XRefStm", e)
	}
	if _, ok := merged.Trailer.GetIndirectRef("Root"); !ok {
		t.Error("merged trailer missing /Root")
	}
}

// TestParseAllXRefsPrevLoop tests that a /Prev chain pointing at itself fails
func TestParseAllXRefsPrevLoop(t *testing.T) {
	body := "%PDF-1.4\n"
	offset := len(body)
	body += "xref\n0 1\n0000000000 65535 f \ntrailer\n<</Size 1 /Prev " + strconv.Itoa(offset) + ">>\n"
	body += "startxref\n" + strconv.Itoa(offset) + "\n%%EOF\n"

	parser := NewXRefParser(strings.NewReader(body))
	if _, err := parser.ParseAllXRefs(); err == nil {
		t.Error("expected error for looping /Prev chain")
	}
}
