package stitch_test

import (
	"fmt"
	"log"
	"os"

	"github.com/tsawler/stitch"
	"github.com/tsawler/stitch/reader"
	"github.com/tsawler/stitch/split"
)

// These examples show typical use. They are not run as tests since they
// require files.

func Example_merge() {
	a, err := os.ReadFile("a.pdf")
	if err != nil {
		log.Fatal(err)
	}
	b, err := os.ReadFile("b.pdf")
	if err != nil {
		log.Fatal(err)
	}

	out, err := stitch.Merge([][]byte{a, b})
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("merged.pdf", out, 0o644); err != nil {
		log.Fatal(err)
	}
}

func Example_splitByRanges() {
	data, err := os.ReadFile("report.pdf")
	if err != nil {
		log.Fatal(err)
	}

	if ok, err := stitch.ValidateRangeSpec("1, 2-3, 5"); err != nil || !ok {
		log.Fatal("bad range spec")
	}

	parts, err := stitch.SplitByRanges(data, "1, 2-3, 5")
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range parts {
		name := stitch.OutputName("report", p.Label)
		if err := os.WriteFile(name, p.Data, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Println("wrote", name)
	}
}

func Example_splitWithOptions() {
	data := stitch.Must(os.ReadFile("scan.pdf"))

	opts := stitch.DefaultOptions()
	opts.Workers = 4
	opts.Compress = false

	parts, err := stitch.SplitByFixedSizeWithOptions(data, 10, opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(parts), "parts")
}

func Example_objectGraph() {
	doc, err := reader.Open("report.pdf")
	if err != nil {
		log.Fatal(err)
	}

	parts, err := split.ByRanges(doc, "1-2", split.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	n, _ := parts[0].Document.PageCount()
	fmt.Println(parts[0].Label, n)
}
