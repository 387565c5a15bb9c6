package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/ui"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored records and rebuild an empty index",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		fmt.Print("This deletes every stored command. Continue? [y/N] ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			fmt.Println("aborted")
			return nil
		}
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.store.Reset(); err != nil {
		return err
	}
	if err := e.idx.Rebuild(nil); err != nil {
		return err
	}
	fmt.Print(ui.Successf("knowledge base reset"))
	return nil
}
