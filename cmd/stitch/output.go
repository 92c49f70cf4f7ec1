package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// printer writes status lines, coloured when writing to a terminal.
type printer struct {
	w    io.Writer
	ok   *color.Color
	warn *color.Color
	fail *color.Color
	dim  *color.Color
}

func newPrinter(w io.Writer, colored bool) *printer {
	p := &printer{
		w:    w,
		ok:   color.New(color.FgGreen, color.Bold),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.fail, p.dim} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// isTerminal reports whether w is a terminal that should get colour.
func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// wrote reports a file written by a command.
func (p *printer) wrote(name string, pages int, size int) {
	fmt.Fprintf(p.w, "%s %s %s\n",
		p.ok.Sprint("wrote"),
		name,
		p.dim.Sprintf("(%s, %s)", plural(pages, "page"), humanize.Bytes(uint64(size))))
}

func (p *printer) warning(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.warn.Sprint("warning"), fmt.Sprintf(format, args...))
}

func (p *printer) failed(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.fail.Sprint("failed"), fmt.Sprintf(format, args...))
}

func (p *printer) field(name string, value any) {
	fmt.Fprintf(p.w, "%-10s %v\n", p.dim.Sprint(name+":"), value)
}

func (p *printer) result(valid bool, spec string) {
	if valid {
		fmt.Fprintf(p.w, "%s %q\n", p.ok.Sprint("valid"), spec)
		return
	}
	fmt.Fprintf(p.w, "%s %q\n", p.fail.Sprint("invalid"), spec)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
