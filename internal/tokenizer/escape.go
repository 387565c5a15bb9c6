package tokenizer

import "strings"

// queryOperators are characters with operator meaning in the query syntax.
// User input is escaped before parsing so that punctuation-heavy command
// names ("g++", "[[", "2>&1") search as literal text.
const queryOperators = `+-!(){}[]^"~*?:\/`

// EscapeQuery backslash-escapes every operator character in raw user input.
func EscapeQuery(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if IsOperator(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsOperator reports whether r is a query-syntax operator character.
func IsOperator(r rune) bool {
	return strings.ContainsRune(queryOperators, r)
}
