package search

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mankihq/manki/internal/tokenizer"
	apperr "github.com/mankihq/manki/pkg/errors"
)

func TestParseEscapedQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain words", "git rebase", []string{"git", "rebase"}},
		{"flag searches literally", "tar -xzf", []string{"tar", "xzf"}},
		{"punctuation heavy", `g++ 2>&1`, []string{"g", "2", "1"}},
		{"duplicates collapse", "list list files", []string{"list", "files"}},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Parse(tokenizer.EscapeQuery(tt.input))
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if !reflect.DeepEqual(plan.Terms, tt.want) {
				t.Errorf("Terms = %v, want %v", plan.Terms, tt.want)
			}
		})
	}
}

func TestParseRejectsUnescapedOperators(t *testing.T) {
	for _, q := range []string{"git:log", "a+b", "what?", `tra{iling`, `half\`} {
		if _, err := Parse(q); !errors.Is(err, apperr.ErrQueryBuild) {
			t.Errorf("Parse(%q): expected ErrQueryBuild, got %v", q, err)
		}
	}
}

func TestParseChineseQuery(t *testing.T) {
	plan, err := Parse(tokenizer.EscapeQuery("查找文件"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(plan.Terms) == 0 {
		t.Error("expected terms for Chinese query")
	}
}
