// Package search turns raw user queries into ranked results against an index
// snapshot. Queries are escaped, parsed into literal terms, tokenised with
// the same analyzer as indexed documents, scored per field, and paged.
package search

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mankihq/manki/internal/tokenizer"
	apperr "github.com/mankihq/manki/pkg/errors"
)

// QueryPlan is the parsed form of a query: the ordered, de-duplicated terms
// to match.
type QueryPlan struct {
	Terms    []string
	RawQuery string
}

// Parse parses an escaped query string into a QueryPlan. Every operator
// character must arrive backslash-escaped (see tokenizer.EscapeQuery); a bare
// operator means the escaping contract was broken upstream and yields
// ErrQueryBuild rather than a silently wrong query.
func Parse(query string) (*QueryPlan, error) {
	plan := &QueryPlan{RawQuery: query}
	var word strings.Builder
	words := make([]string, 0, 4)
	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}

	escaped := false
	for _, r := range query {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case unicode.IsSpace(r):
			flush()
		case tokenizer.IsOperator(r):
			return nil, fmt.Errorf("%w: unescaped operator %q in query", apperr.ErrQueryBuild, r)
		default:
			word.WriteRune(r)
		}
	}
	if escaped {
		return nil, fmt.Errorf("%w: trailing escape in query", apperr.ErrQueryBuild)
	}
	flush()

	seen := make(map[string]struct{})
	for _, w := range words {
		terms, err := tokenizer.Terms(w)
		if err != nil {
			return nil, err
		}
		for _, t := range terms {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			plan.Terms = append(plan.Terms, t)
		}
	}
	return plan, nil
}
