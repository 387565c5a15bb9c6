package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/importer"
	"github.com/mankihq/manki/internal/ui"
)

var importLangs []string

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import tldr pages from a directory or archive",
	Long: `Import tldr-format markdown pages into the knowledge base.

The path may be a pages tree (pages/, pages.zh/, ...) or a release
archive (.zip or .tar.gz). Pages that fail validation are counted and
reported, never silently dropped.`,
	Example: `  # Import a checked-out tldr repository
  manki import ~/src/tldr

  # Import only English and Chinese pages from a release archive
  manki import tldr-pages.zip --lang en --lang zh`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringArrayVar(&importLangs, "lang", nil, "languages to import (repeatable; default all)")
	rootCmd.AddCommand(importCmd)
}

func isArchive(path string) bool {
	return strings.HasSuffix(path, ".zip") ||
		strings.HasSuffix(path, ".tar.gz") ||
		strings.HasSuffix(path, ".tgz")
}

func runImport(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	im := importer.New(e.store, e.idx)
	var stats *importer.Stats
	if isArchive(args[0]) {
		stats, err = im.ImportArchive(cmd.Context(), args[0], importLangs)
	} else {
		stats, err = im.ImportDir(cmd.Context(), args[0], importLangs)
	}
	if stats != nil {
		fmt.Print(ui.RenderImportStats(stats))
	}
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}
	return nil
}
