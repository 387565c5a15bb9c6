package ui

import (
	"strings"
	"testing"

	"github.com/mankihq/manki/internal/importer"
	"github.com/mankihq/manki/internal/learn"
	"github.com/mankihq/manki/internal/record"
	"github.com/mankihq/manki/internal/search"
)

func TestRenderSearchResults(t *testing.T) {
	resp := &search.Response{
		Results: []search.Result{
			{
				Command: record.Command{
					Name: "tar", Lang: "en",
					Description: "archiving utility",
					Examples:    []record.Example{{Description: "create an archive", Code: "tar cf target.tar file"}},
				},
				Score: 2.4171,
			},
		},
		Total:  1,
		TookMS: 3,
	}
	out := RenderSearchResults(resp, "tar")
	for _, want := range []string{"tar", "[en]", "archiving utility", "(2.4171)", "$ tar cf target.tar file"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSearchResultsEmpty(t *testing.T) {
	out := RenderSearchResults(&search.Response{}, "nosuchthing")
	if !strings.Contains(out, "no results") || !strings.Contains(out, "nosuchthing") {
		t.Errorf("unexpected empty-result output: %q", out)
	}
}

func TestRenderSearchResultsTruncatedTotal(t *testing.T) {
	resp := &search.Response{
		Results: []search.Result{{Command: record.Command{Name: "ls", Lang: "en"}, Score: 1}},
		Total:   7,
	}
	out := RenderSearchResults(resp, "ls")
	if !strings.Contains(out, "6 more matches") {
		t.Errorf("output missing overflow hint:\n%s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	cmd := &record.Command{
		Name: "grep", Lang: "zh",
		Description: "文本搜索工具",
		Category:    "common", Platform: "linux",
		Examples: []record.Example{
			{Description: "搜索文件", Code: "grep pattern file"},
			{Description: "忽略大小写", Code: "grep -i pattern file"},
		},
	}
	out := RenderCommand(cmd)
	for _, want := range []string{"grep", "[zh]", "文本搜索工具", "examples (2)", "$ grep -i pattern file", "platform: linux"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCommandList(t *testing.T) {
	cmds := []*record.Command{
		{Name: "ls", Lang: "en", Description: "list directory contents"},
		{Name: "mkdir", Lang: "en", Description: strings.Repeat("long ", 30)},
	}
	out := RenderCommandList(cmds)
	if !strings.Contains(out, "commands (2)") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "…") {
		t.Errorf("long description not truncated:\n%s", out)
	}
}

func TestRenderLearnStats(t *testing.T) {
	out := RenderLearnStats(&learn.Stats{Learned: 12, Skipped: 2, Failed: 0, SkippedNames: []string{"cd", "true"}})
	if !strings.Contains(out, "learned 12") || !strings.Contains(out, "cd, true") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRenderImportStats(t *testing.T) {
	out := RenderImportStats(&importer.Stats{Imported: 100, Skipped: 1, Failed: 3})
	if !strings.Contains(out, "imported 100") || !strings.Contains(out, "failed 3") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRenderMetadata(t *testing.T) {
	out := RenderMetadata(&record.Metadata{
		Version:      "2.2",
		CommandCount: 4214,
		LastUpdate:   "2026-08-28T10:00:00Z",
		Languages:    []string{"en", "zh"},
	})
	for _, want := range []string{"4214", "en, zh", "v2.2", "2026-08-28"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 70); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	got := truncate(strings.Repeat("界", 80), 10)
	if len([]rune(got)) != 10 {
		t.Errorf("truncate length = %d, want 10", len([]rune(got)))
	}
}
