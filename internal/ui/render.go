package ui

import (
	"fmt"
	"strings"

	"github.com/mankihq/manki/internal/importer"
	"github.com/mankihq/manki/internal/learn"
	"github.com/mankihq/manki/internal/record"
	"github.com/mankihq/manki/internal/search"
)

// RenderSearchResults formats a ranked response for the terminal.
func RenderSearchResults(resp *search.Response, query string) string {
	var b strings.Builder
	if resp.Total == 0 {
		fmt.Fprintf(&b, "%s no results for %q\n", warnStyle.Render(SymbolWarning), query)
		return b.String()
	}
	fmt.Fprintf(&b, "%s (%d results, %dms)\n\n",
		sectionStyle.Render(fmt.Sprintf("results for %q", query)),
		resp.Total, resp.TookMS)
	for i, r := range resp.Results {
		fmt.Fprintf(&b, "%d. %s %s %s\n",
			i+1,
			nameStyle.Render(r.Name),
			langStyle.Render("["+r.Lang+"]"),
			scoreStyle.Render(fmt.Sprintf("(%.4f)", r.Score)))
		fmt.Fprintf(&b, "   %s\n", descStyle.Render(r.Description))
		if len(r.Examples) > 0 {
			ex := r.Examples[0]
			fmt.Fprintf(&b, "   %s %s\n", SymbolBullet, exampleDescStyle.Render(ex.Description))
			fmt.Fprintf(&b, "     %s\n", codeStyle.Render("$ "+ex.Code))
		}
		b.WriteByte('\n')
	}
	if resp.Total > len(resp.Results) {
		fmt.Fprintf(&b, "%s\n", scoreStyle.Render(
			fmt.Sprintf("… %d more matches, raise --limit to see them", resp.Total-len(resp.Results))))
	}
	return b.String()
}

// RenderCommand formats one full record.
func RenderCommand(cmd *record.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", nameStyle.Render(cmd.Name), langStyle.Render("["+cmd.Lang+"]"))
	fmt.Fprintf(&b, "%s\n\n", descStyle.Render(cmd.Description))
	fmt.Fprintf(&b, "%s\n", sectionStyle.Render(fmt.Sprintf("examples (%d)", len(cmd.Examples))))
	for _, ex := range cmd.Examples {
		fmt.Fprintf(&b, "  %s %s\n", SymbolBullet, exampleDescStyle.Render(ex.Description))
		fmt.Fprintf(&b, "    %s\n", codeStyle.Render("$ "+ex.Code))
	}
	if cmd.Platform != "" || cmd.Category != "" {
		fmt.Fprintf(&b, "\n%s\n", scoreStyle.Render("platform: "+cmd.Platform+"  category: "+cmd.Category))
	}
	return b.String()
}

// RenderCommandList formats the name/description listing.
func RenderCommandList(cmds []*record.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", sectionStyle.Render(fmt.Sprintf("commands (%d)", len(cmds))))
	width := 0
	for _, c := range cmds {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}
	for _, c := range cmds {
		fmt.Fprintf(&b, "  %-*s %s %s\n",
			width, c.Name,
			langStyle.Render("["+c.Lang+"]"),
			exampleDescStyle.Render(truncate(c.Description, 70)))
	}
	return b.String()
}

// RenderLearnStats formats a bulk-learn report.
func RenderLearnStats(stats *learn.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s learned %d, skipped %d, failed %d\n",
		statusSymbol(stats.Failed), stats.Learned, stats.Skipped, stats.Failed)
	if len(stats.SkippedNames) > 0 {
		fmt.Fprintf(&b, "%s\n", scoreStyle.Render("skipped: "+strings.Join(stats.SkippedNames, ", ")))
	}
	return b.String()
}

// RenderImportStats formats a batch-import report.
func RenderImportStats(stats *importer.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s imported %d, skipped %d, failed %d\n",
		statusSymbol(stats.Failed), stats.Imported, stats.Skipped, stats.Failed)
	if len(stats.SkippedIDs) > 0 {
		fmt.Fprintf(&b, "%s\n", scoreStyle.Render("skipped: "+strings.Join(stats.SkippedIDs, ", ")))
	}
	return b.String()
}

// RenderMetadata formats data-set metadata.
func RenderMetadata(meta *record.Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", sectionStyle.Render("knowledge base"))
	fmt.Fprintf(&b, "  commands:    %d\n", meta.CommandCount)
	fmt.Fprintf(&b, "  languages:   %s\n", strings.Join(meta.Languages, ", "))
	if meta.Version != "" {
		fmt.Fprintf(&b, "  pages:       v%s\n", meta.Version)
	}
	if meta.LastUpdate != "" {
		fmt.Fprintf(&b, "  last update: %s\n", meta.LastUpdate)
	}
	return b.String()
}

// Errorf formats an error line.
func Errorf(format string, args ...any) string {
	return errorStyle.Render(SymbolError+" "+fmt.Sprintf(format, args...)) + "\n"
}

// Successf formats a success line.
func Successf(format string, args ...any) string {
	return successStyle.Render(SymbolSuccess+" "+fmt.Sprintf(format, args...)) + "\n"
}

func statusSymbol(failed int) string {
	if failed > 0 {
		return warnStyle.Render(SymbolWarning)
	}
	return successStyle.Render(SymbolSuccess)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
