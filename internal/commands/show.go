package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/ui"
)

var showLang string

var showCmd = &cobra.Command{
	Use:   "show <command>",
	Short: "Show a stored command record",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showLang, "lang", "", "record language (default from config)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	lang := showLang
	if lang == "" {
		lang = cfg.Search.DefaultLang
	}
	rec, err := e.store.Get(args[0], lang)
	if err != nil {
		return fmt.Errorf("%s (%s): %w", args[0], lang, err)
	}
	fmt.Print(ui.RenderCommand(rec))
	return nil
}
