package learn

import (
	"fmt"
	"strings"

	"github.com/mankihq/manki/internal/record"
	apperr "github.com/mankihq/manki/pkg/errors"
)

// Source selects which captured text the parser should prefer.
type Source int

const (
	SourceAuto Source = iota
	SourceHelp
	SourceMan
)

// Capture is the raw output the process runner collected for one command.
// Empty strings mark sources that were unavailable.
type Capture struct {
	Help string
	Man  string
}

// Options bounds example synthesis.
type Options struct {
	MaxExamples       int
	MaxOptionExamples int
}

// Parse extracts a structured record from captured help/man text. Sources
// are tried in priority order (help first unless man is preferred); when the
// first source yields no usable example the second is parsed too and the
// results merged: the first non-empty description wins and examples are
// unioned up to the cap. A command with no extractable description or
// examples is unlearnable and must not be persisted.
func Parse(name, lang string, capture Capture, preferred Source, opts Options) (*record.Command, error) {
	type source struct {
		text string
		man  bool
	}
	ordered := []source{{capture.Help, false}, {capture.Man, true}}
	if preferred == SourceMan {
		ordered = []source{{capture.Man, true}, {capture.Help, false}}
	}

	var desc, content string
	var examples []record.Example
	for _, src := range ordered {
		if strings.TrimSpace(src.text) == "" {
			continue
		}
		d, ex := extract(name, src.text, src.man, opts)
		if desc == "" {
			desc = d
		}
		examples = mergeExamples(examples, ex, opts.MaxExamples)
		if content == "" {
			content = strings.TrimSpace(src.text)
		}
		if desc != "" && len(examples) > 0 {
			break
		}
	}

	if desc == "" || len(examples) == 0 {
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnlearnable, name)
	}
	cmd := &record.Command{
		Name:        name,
		Description: desc,
		Lang:        lang,
		Examples:    examples,
		Content:     content,
	}
	cmd.Normalize()
	return cmd, nil
}

// extract runs the description and example heuristics over one source's
// text.
func extract(name, text string, man bool, opts Options) (string, []record.Example) {
	lines := strings.Split(text, "\n")
	desc := ""
	if man {
		desc = manDescription(name, lines)
	}
	if desc == "" {
		desc = leadingDescription(lines)
	}
	examples := scanExamples(name, lines, opts.MaxExamples)
	examples = mergeExamples(examples, optionExamples(name, lines, opts.MaxOptionExamples), opts.MaxExamples)
	return desc, examples
}

// leadingDescription takes the first contiguous block of non-empty text
// lines appearing before any usage/options/flag line.
func leadingDescription(lines []string) string {
	var block []string
	for _, line := range lines {
		switch classifyLine(line) {
		case lineText:
			block = append(block, strings.TrimSpace(line))
		case lineBlank:
			if len(block) > 0 {
				return collapseWhitespace(strings.Join(block, " "))
			}
		default:
			if len(block) > 0 {
				return collapseWhitespace(strings.Join(block, " "))
			}
			return ""
		}
	}
	return collapseWhitespace(strings.Join(block, " "))
}

// manDescription pulls the "name - description" line out of a man page's
// NAME section.
func manDescription(name string, lines []string) string {
	inName := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.EqualFold(trimmed, "NAME") {
			inName = true
			continue
		}
		if !inName || trimmed == "" {
			continue
		}
		if isSectionHeader(trimmed) {
			return ""
		}
		if i := strings.Index(trimmed, " - "); i >= 0 {
			names := trimmed[:i]
			if strings.Contains(names, name) {
				return collapseWhitespace(trimmed[i+3:])
			}
		}
		return ""
	}
	return ""
}

// scanExamples collects literal invocation lines: "$ cmd ..." or lines in an
// EXAMPLES section starting with the command name. The preceding text line,
// if any, becomes the example description.
func scanExamples(name string, lines []string, max int) []record.Example {
	if max <= 0 {
		return nil
	}
	var out []record.Example
	lastText := ""
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		code := ""
		switch {
		case strings.HasPrefix(trimmed, "$ "):
			code = strings.TrimSpace(trimmed[2:])
		case strings.HasPrefix(trimmed, name+" ") && strings.HasPrefix(line, " "):
			// Indented invocation lines, the man EXAMPLES convention.
			// Synopsis-style grammar lines are not runnable examples.
			if !strings.ContainsAny(trimmed, "[]|") && !strings.Contains(trimmed, "...") {
				code = trimmed
			}
		}
		if code == "" {
			if classifyLine(line) == lineText {
				lastText = collapseWhitespace(trimmed)
			}
			continue
		}
		desc := lastText
		if desc == "" {
			desc = "Example usage"
		}
		out = append(out, record.Example{Description: desc, Code: code})
		lastText = ""
		if len(out) >= max {
			break
		}
	}
	return out
}

// optionExamples synthesizes one example per documented flag, earliest flags
// first. A flag line must carry its own description text (two-plus spaces or
// a tab after the flags) to qualify.
func optionExamples(name string, lines []string, max int) []record.Example {
	if max <= 0 {
		return nil
	}
	var out []record.Example
	for i, line := range lines {
		if classifyLine(line) != lineOption {
			continue
		}
		ex, ok := parseOptionLine(name, line)
		if !ok {
			// Man pages often put the description on the next indented
			// line rather than after the flags.
			if flag := pickFlag(strings.TrimSpace(line)); flag != "" && i+1 < len(lines) && classifyLine(lines[i+1]) == lineText {
				ex = record.Example{
					Description: collapseWhitespace(lines[i+1]),
					Code:        name + " " + flag,
				}
				ok = true
			}
		}
		if !ok {
			continue
		}
		out = append(out, ex)
		if len(out) >= max {
			break
		}
	}
	return out
}

// parseOptionLine turns "-v, --verbose  Explain what is done" into an
// example ("Explain what is done", "name --verbose"). The long form is
// preferred when both are listed; argument placeholders after '=' or a space
// are dropped.
func parseOptionLine(name, line string) (record.Example, bool) {
	trimmed := strings.TrimSpace(line)
	flagPart, desc, ok := splitFlagDescription(trimmed)
	if !ok || desc == "" {
		return record.Example{}, false
	}
	flag := pickFlag(flagPart)
	if flag == "" {
		return record.Example{}, false
	}
	return record.Example{
		Description: collapseWhitespace(desc),
		Code:        name + " " + flag,
	}, true
}

func splitFlagDescription(line string) (string, string, bool) {
	if i := strings.Index(line, "\t"); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
	}
	if i := strings.Index(line, "  "); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i:]), true
	}
	return "", "", false
}

func pickFlag(flagPart string) string {
	candidates := strings.Split(flagPart, ",")
	flag := ""
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if !strings.HasPrefix(c, "-") {
			continue
		}
		// Strip any argument placeholder.
		if i := strings.IndexAny(c, " =["); i >= 0 {
			c = c[:i]
		}
		if c == "-" || c == "--" {
			continue
		}
		if strings.HasPrefix(c, "--") {
			return c
		}
		if flag == "" {
			flag = c
		}
	}
	return flag
}

// mergeExamples unions b into a, deduplicating by code, capped at max.
func mergeExamples(a, b []record.Example, max int) []record.Example {
	seen := make(map[string]struct{}, len(a))
	out := make([]record.Example, 0, len(a)+len(b))
	for _, lst := range [][]record.Example{a, b} {
		for _, ex := range lst {
			if _, dup := seen[ex.Code]; dup {
				continue
			}
			seen[ex.Code] = struct{}{}
			out = append(out, ex)
			if max > 0 && len(out) >= max {
				return out
			}
		}
	}
	return out
}
