// Command stitch merges PDF files and splits them into parts.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tsawler/stitch/logging"
)

const version = "0.1.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config    kong.ConfigFlag `help:"YAML file with default flag values" type:"path"`
	LogLevel  string          `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
	LogFormat string          `name:"log-format" help:"Log format (text, json)" default:"text" enum:"text,json"`
	Workers   int             `help:"Number of documents processed at once" default:"1"`
	Compress  bool            `help:"Flate-compress unfiltered streams" default:"true" negatable:""`
	NoColor   bool            `name:"no-color" help:"Disable coloured output"`

	out *printer
}

// CLI defines the command-line interface for stitch.
type CLI struct {
	Globals

	Merge    MergeCmd      `cmd:"" help:"Merge PDF files into one"`
	Split    SplitGroup    `cmd:"" help:"Split a PDF file into parts"`
	Validate ValidateGroup `cmd:"" help:"Check the syntax of a page spec"`
	Info     InfoCmd       `cmd:"" help:"Show a summary of a PDF file"`
	Version  VersionCmd    `cmd:"" help:"Print version information"`
}

// SplitGroup contains the split commands.
type SplitGroup struct {
	Ranges SplitRangesCmd `cmd:"" help:"Split by a page range spec such as \"1, 2-3, 5\""`
	Fixed  SplitFixedCmd  `cmd:"" help:"Split into parts of a fixed number of pages"`
}

// ValidateGroup contains the spec validation commands.
type ValidateGroup struct {
	Ranges ValidateRangesCmd `cmd:"" help:"Validate a page range spec"`
	Fixed  ValidateFixedCmd  `cmd:"" help:"Validate a chunk size"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "stitch:", err)
		os.Exit(1)
	}
}

// run parses args and executes the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("stitch"),
		kong.Description("Merge and split PDF files"),
		kong.UsageOnError(),
		kong.Configuration(yamlLoader),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if err := cli.Globals.setup(stdout, stderr); err != nil {
		return err
	}
	return ctx.Run(&cli.Globals)
}

// setup installs the logger and the output printer.
func (g *Globals) setup(stdout, stderr io.Writer) error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	logging.SetLogger(logging.New(stderr, level, logging.Format(g.LogFormat)))

	g.out = newPrinter(stdout, !g.NoColor && isTerminal(stdout))
	return nil
}
