package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base and index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	meta, err := e.store.Metadata()
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderMetadata(meta))

	snap := e.idx.Current()
	fmt.Printf("  index:       v%d, %d docs, %d terms, avg length %.1f\n",
		snap.Version(), snap.DocCount(), snap.TermCount(), snap.AvgDocLen())
	return nil
}
