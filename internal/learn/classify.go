// Package learn converts raw `--help` and `man` output into structured
// command records. The parser is a pipeline of pure functions: a line
// classifier feeds a description-block extractor and an example synthesizer,
// so each heuristic is testable against literal text fixtures. Process
// execution lives behind the Runner interface; the parser itself never
// spawns anything.
package learn

import (
	"strings"
	"unicode"
)

type lineKind int

const (
	lineBlank lineKind = iota
	lineUsage
	lineSectionHeader
	lineOption
	lineText
)

// classifyLine assigns one raw output line to a structural category. Order
// of checks matters: a "Usage:" line is never a section header, and an
// indented "-v ..." line is an option even inside a described section.
func classifyLine(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return lineBlank
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "usage:") || strings.HasPrefix(lower, "usage ") || lower == "usage" {
		return lineUsage
	}
	if strings.HasPrefix(trimmed, "-") {
		return lineOption
	}
	if isSectionHeader(trimmed) {
		return lineSectionHeader
	}
	return lineText
}

// isSectionHeader recognises headers like "OPTIONS", "SYNOPSIS", "SEE ALSO",
// or "Options:". Help output and man pages both use short header lines; a long
// sentence ending in a colon is prose, not a header.
func isSectionHeader(trimmed string) bool {
	if strings.HasSuffix(trimmed, ":") {
		trimmed = strings.TrimSuffix(trimmed, ":")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == "" {
			return false
		}
		return len(strings.Fields(trimmed)) <= 3
	}
	letters := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return letters >= 2 && len(strings.Fields(trimmed)) <= 4
}

// collapseWhitespace squashes runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
