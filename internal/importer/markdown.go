// Package importer ingests tldr-style markdown pages, individually or in
// bulk from directories and release archives. Files are parsed off a real
// markdown AST rather than line regexes, so inline-code placeholders and
// multi-line blockquotes survive intact.
package importer

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/mankihq/manki/internal/record"
	apperr "github.com/mankihq/manki/pkg/errors"
)

var markdown = goldmark.New()

// ParseMarkdown parses one tldr-style page into a record:
//
//	# name
//	> description lines
//	- example description:
//	`example code`
//
// "More information" links are excluded from the description, {{arg}}
// placeholders are preserved verbatim, and the full raw source is retained
// as the record's content so the whole page is searchable. Missing name,
// description, or examples make the page invalid; it is rejected whole,
// never partially imported.
func ParseMarkdown(src []byte, lang string) (*record.Command, error) {
	doc := markdown.Parser().Parse(gtext.NewReader(src))

	cmd := &record.Command{Lang: lang}
	pendingDesc := ""

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && cmd.Name == "" {
				cmd.Name = strings.TrimSpace(textOf(node, src))
			}
		case *ast.Blockquote:
			if cmd.Description == "" {
				cmd.Description = descriptionFrom(node, src)
			}
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				desc, code := exampleFromItem(item, src)
				if code != "" {
					appendExample(cmd, desc, code)
					pendingDesc = ""
				} else if desc != "" {
					pendingDesc = desc
				}
			}
		case *ast.Paragraph:
			if code := inlineCode(node, src); code != "" && pendingDesc != "" {
				appendExample(cmd, pendingDesc, code)
				pendingDesc = ""
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			code := strings.TrimSpace(blockLines(n, src))
			if code != "" && pendingDesc != "" {
				appendExample(cmd, pendingDesc, code)
				pendingDesc = ""
			}
		}
	}
	cmd.Content = strings.TrimSpace(string(src))

	switch {
	case cmd.Name == "":
		return nil, fmt.Errorf("%w: page has no title", apperr.ErrInvalidInput)
	case cmd.Description == "":
		return nil, fmt.Errorf("%w: page %q has no description", apperr.ErrInvalidInput, cmd.Name)
	case len(cmd.Examples) == 0:
		return nil, fmt.Errorf("%w: page %q has no examples", apperr.ErrInvalidInput, cmd.Name)
	}
	cmd.Normalize()
	return cmd, nil
}

func appendExample(cmd *record.Command, desc, code string) {
	cmd.Examples = append(cmd.Examples, record.Example{
		Description: strings.TrimRight(strings.TrimSpace(desc), ":："),
		Code:        code,
	})
}

// descriptionFrom joins a blockquote's lines, dropping "More information"
// reference lines and bare URLs.
func descriptionFrom(node ast.Node, src []byte) string {
	var kept []string
	for _, line := range strings.Split(textOf(node, src), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isReferenceLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, " ")
}

func isReferenceLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "more information") ||
		strings.HasPrefix(line, "更多信息") ||
		strings.HasPrefix(lower, "see also") ||
		strings.Contains(lower, "http://") ||
		strings.Contains(lower, "https://")
}

// exampleFromItem reads one list item. tldr pages usually put the code in a
// separate paragraph after the bullet, but a tight item may carry its own
// inline code.
func exampleFromItem(item ast.Node, src []byte) (string, string) {
	code := ""
	var descParts []string
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if c := inlineCode(child, src); c != "" {
			code = c
			continue
		}
		if t := strings.TrimSpace(textOf(child, src)); t != "" {
			descParts = append(descParts, t)
		}
	}
	return strings.Join(descParts, " "), code
}

// inlineCode returns the node's code-span text when the node is (or wraps)
// a single inline code line, else "".
func inlineCode(n ast.Node, src []byte) string {
	var codes []string
	other := false
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.CodeSpan:
			codes = append(codes, textOf(t, src))
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if strings.TrimSpace(string(t.Segment.Value(src))) != "" {
				other = true
			}
		}
		return ast.WalkContinue, nil
	})
	if other || len(codes) == 0 {
		return ""
	}
	return strings.Join(codes, " ")
}

// textOf flattens a node's text content, keeping soft line breaks as
// newlines.
func textOf(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// blockLines joins the raw lines of a code block.
func blockLines(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

// RenderMarkdown serialises a record back into the tldr page format parsed
// by ParseMarkdown. Parsing the output reproduces the record's name,
// description, and examples; content always reflects the source actually
// parsed.
func RenderMarkdown(cmd *record.Command) string {
	var b strings.Builder
	b.WriteString("# " + cmd.Name + "\n\n")
	b.WriteString("> " + cmd.Description + "\n\n")
	for _, ex := range cmd.Examples {
		b.WriteString("- " + ex.Description + ":\n\n")
		b.WriteString("`" + ex.Code + "`\n\n")
	}
	return b.String()
}
