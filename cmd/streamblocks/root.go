// Package main is the streamblocks CLI: reads text from stdin, extracts
// structured blocks from it, and writes the resulting event stream to
// stdout as newline-delimited JSON, optionally pretty-printing block
// content and pass-through text as markdown to stderr as it streams.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samsaffron/streamblocks"
	"github.com/samsaffron/streamblocks/blocks/markdownblock"
	"github.com/samsaffron/streamblocks/event"
	"github.com/samsaffron/streamblocks/mdstream"
	"github.com/samsaffron/streamblocks/registry"
	"github.com/samsaffron/streamblocks/syntax"
	"github.com/spf13/cobra"
)

var (
	syntaxFlag    string
	renderFlag    bool
	maxBlockSize  int
	maxLineLength int
	strictTypes   bool
	debugMode     bool
)

var rootCmd = &cobra.Command{
	Use:   "streamblocks",
	Short: "Extract structured blocks from a streamed text source",
	Long: `streamblocks reads text from stdin and emits a JSON-lines event
stream describing every structured block it finds, alongside any
pass-through text outside of blocks.

Examples:
  streamblocks < transcript.txt
  streamblocks --syntax delimiter-frontmatter < transcript.txt
  streamblocks --render < transcript.txt`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&syntaxFlag, "syntax", "delimiter-preamble",
		"block syntax: delimiter-preamble, delimiter-frontmatter, or markdown-frontmatter")
	rootCmd.Flags().BoolVar(&renderFlag, "render", false, "pretty-print block content and pass-through text as markdown to stderr as it streams")
	rootCmd.Flags().IntVar(&maxBlockSize, "max-block-size", 0, "reject a block once its raw size exceeds this many bytes (0 = unbounded)")
	rootCmd.Flags().IntVar(&maxLineLength, "max-line-length", 0, "truncate lines wider than this many columns (0 = unbounded)")
	rootCmd.Flags().BoolVar(&strictTypes, "strict-unknown-type", false, "reject blocks whose block_type has no registered schema")
	rootCmd.Flags().BoolVarP(&debugMode, "debug", "d", false, "log processor activity to stderr")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildSyntax(name string) (syntax.Syntax, error) {
	switch name {
	case "delimiter-preamble":
		return syntax.NewDelimiterPreamble("delimiter-preamble", "!!"), nil
	case "delimiter-frontmatter":
		return syntax.NewDelimiterFrontmatter("delimiter-frontmatter", "", ""), nil
	case "markdown-frontmatter":
		return syntax.NewMarkdownFrontmatter("markdown-frontmatter"), nil
	default:
		return nil, fmt.Errorf("unknown syntax %q", name)
	}
}

func run(cmd *cobra.Command, args []string) error {
	syn, err := buildSyntax(syntaxFlag)
	if err != nil {
		return err
	}

	reg := registry.New(syn)
	reg.Register("markdown", markdownblock.New())

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if !debugMode {
		logger = slog.New(slog.DiscardHandler)
	}

	proc := streamblocks.New(reg,
		streamblocks.WithMaxBlockSize(maxBlockSize),
		streamblocks.WithMaxLineLength(maxLineLength),
		streamblocks.WithStrictUnknownType(strictTypes),
		streamblocks.WithLogger(logger),
	)

	var renderer *mdstream.StreamRenderer
	if renderFlag {
		renderer, err = mdstream.NewRenderer(os.Stderr)
		if err != nil {
			return fmt.Errorf("create renderer: %w", err)
		}
	}

	out := json.NewEncoder(os.Stdout)
	reader := bufio.NewReaderSize(os.Stdin, 64*1024)
	buf := make([]byte, 64*1024)

	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			for _, ev := range proc.ProcessChunk(buf[:n]) {
				if err := out.Encode(ev); err != nil {
					return err
				}
				if renderer != nil {
					writeRenderable(renderer, ev)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read stdin: %w", readErr)
		}
	}

	for _, ev := range proc.Finalize() {
		if err := out.Encode(ev); err != nil {
			return err
		}
		if renderer != nil {
			writeRenderable(renderer, ev)
		}
	}
	if renderer != nil {
		return renderer.Close()
	}
	return nil
}

// writeRenderable feeds a block's content deltas and pass-through text into
// renderer as they arrive, so markdown pretty-prints incrementally instead
// of only once a block finishes.
func writeRenderable(renderer *mdstream.StreamRenderer, ev event.Event) {
	switch e := ev.(type) {
	case event.BlockContentDelta:
		fmt.Fprintln(renderer, e.Delta)
	case event.TextContent:
		fmt.Fprintln(renderer, e.Line)
	}
}
