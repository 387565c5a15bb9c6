package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/search"
	"github.com/mankihq/manki/internal/ui"
)

var (
	searchLang  string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search the knowledge base",
	Long: `Search indexed command documentation with a ranked full-text query.

Punctuation in the query is matched literally, so queries like "tar -xzf"
or "git commit --amend" work as typed. Results are ranked with command
names weighted above descriptions, and descriptions above example code.`,
	Example: `  # Find commands about compressing archives
  manki search compress archive

  # Restrict results to Chinese pages
  manki search 压缩 --lang zh`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchLang, "lang", "", "restrict results to one language (en, zh, ...)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum results (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	query := strings.Join(args, " ")
	engine := search.NewEngine(e.store, e.idx, cfg.Search)
	resp, err := engine.Search(cmd.Context(), query, searchLang, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	fmt.Print(ui.RenderSearchResults(resp, query))
	return nil
}
