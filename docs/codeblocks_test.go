package docs_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/brokerage"
	"github.com/etnz/brokerage/cmd"
	"github.com/etnz/brokerage/config"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	tsimRun      = "tsim run"
	consoleCheck = "console check"
)

// TestCodeBlocks runs the examples of every topic: "tsim run" blocks are
// session scripts, each "console check" block is the expected output of the
// previous script. Every topic runs in its own session.
func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			runBlocks(t, file)
		})
	}
}

// Block represents a fenced code block in the markdown file.
type Block struct {
	Type    string
	Content string
	File    string
	Line    int
}

// parseMarkdown parses a markdown file and returns a list of Blocks.
func parseMarkdown(t *testing.T, file string) []*Block {
	t.Helper()

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}

	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var blocks []*Block
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		lang := string(fcb.Info.Segment.Value(content))
		if lang != tsimRun && lang != consoleCheck {
			return ast.WalkContinue, nil
		}

		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, &Block{
			Type:    lang,
			Content: b.String(),
			File:    file,
			Line:    lineNumber(content, fcb.Info.Segment.Start),
		})
		return ast.WalkContinue, nil
	})
	return blocks
}

// lineNumber computes the line number of an offset in source.
func lineNumber(source []byte, offset int) int {
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}

func runBlocks(t *testing.T, file string) {
	t.Helper()
	blocks := parseMarkdown(t, file)
	if len(blocks) == 0 {
		return
	}

	var out bytes.Buffer
	s := cmd.NewSession(config.Default(), brokerage.DefaultPrices(), &out, io.Discard)
	s.Raw = true

	var previousOutput string
	for _, block := range blocks {
		switch block.Type {
		case tsimRun:
			out.Reset()
			if err := cmd.RunScript(context.Background(), s, strings.NewReader(block.Content)); err != nil {
				t.Fatalf("%s:%d: script failed: %v with output:\n%s\n", block.File, block.Line, err, out.String())
			}
			previousOutput = out.String()
		case consoleCheck:
			want := strings.TrimSpace(block.Content)
			got := strings.TrimSpace(previousOutput)
			if want != got {
				t.Errorf("%s:%d: output mismatch:\ngot:\n\n%s\n\nwant:\n\n%s\n\ngot :%q\nwant:%q\n", block.File, block.Line, got, want, got, want)
			}
		}
	}
}
