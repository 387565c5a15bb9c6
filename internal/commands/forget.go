package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/ui"
)

var forgetLang string

var forgetCmd = &cobra.Command{
	Use:   "forget <command>",
	Short: "Remove a command from the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE:  runForget,
}

func init() {
	forgetCmd.Flags().StringVar(&forgetLang, "lang", "", "record language (default from config)")
	rootCmd.AddCommand(forgetCmd)
}

func runForget(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	lang := forgetLang
	if lang == "" {
		lang = cfg.Search.DefaultLang
	}
	if err := e.store.Delete(args[0], lang); err != nil {
		return fmt.Errorf("%s (%s): %w", args[0], lang, err)
	}
	if err := e.idx.Delete(args[0], lang); err != nil {
		return err
	}
	fmt.Print(ui.Successf("forgot %s (%s)", args[0], lang))
	return nil
}
