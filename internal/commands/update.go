package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/importer"
	"github.com/mankihq/manki/internal/ui"
	"github.com/mankihq/manki/internal/update"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download and import the latest tldr pages release",
	Long: `Check the upstream tldr-pages releases for the newest version,
download the page archive, and import it. When the release check fails,
the configured fallback version is downloaded instead.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var updateForce bool

func init() {
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "re-import even when the stored version is current")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	up := update.New(cfg.Update, importer.New(e.store, e.idx), e.store)
	stats, version, err := up.Run(cmd.Context(), updateForce)
	if stats != nil {
		fmt.Print(ui.RenderImportStats(stats))
	}
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if stats == nil {
		fmt.Print(ui.Successf("already up to date (v%s)", version))
		return nil
	}
	fmt.Print(ui.Successf("pages updated to v%s", version))
	return nil
}
