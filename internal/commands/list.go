package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/record"
	"github.com/mankihq/manki/internal/ui"
)

var listLang string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored commands",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listLang, "lang", "", "restrict to one language")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	var cmds []*record.Command
	if listLang != "" {
		cmds, err = e.store.ListLang(listLang)
	} else {
		cmds, err = e.store.List()
	}
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderCommandList(cmds))
	return nil
}
