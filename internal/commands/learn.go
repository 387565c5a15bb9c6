package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/learn"
	"github.com/mankihq/manki/internal/ui"
)

var (
	learnLang  string
	learnMan   bool
	learnForce bool
)

var learnCmd = &cobra.Command{
	Use:   "learn <command>",
	Short: "Learn one command from its help or man output",
	Long: `Capture a command's --help output (falling back to its man page),
parse a description and usage examples out of it, and store the result.

A command that is already in the knowledge base is left alone unless
--force is given, in which case the record is replaced.`,
	Example: `  # Learn from --help, with man as fallback
  manki learn rsync

  # Force the man page and replace any existing record
  manki learn rsync --man --force`,
	Args: cobra.ExactArgs(1),
	RunE: runLearn,
}

func init() {
	learnCmd.Flags().StringVar(&learnLang, "lang", "", "language tag for the record (default from config)")
	learnCmd.Flags().BoolVar(&learnMan, "man", false, "prefer the man page over --help output")
	learnCmd.Flags().BoolVar(&learnForce, "force", false, "replace an existing record")
	rootCmd.AddCommand(learnCmd)
}

func runLearn(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	name := args[0]
	lang := learnLang
	if lang == "" {
		lang = cfg.Search.DefaultLang
	}
	if !learnForce {
		if _, err := e.store.Get(name, lang); err == nil {
			fmt.Printf("%s (%s) is already known; use --force to re-learn\n", name, lang)
			return nil
		}
	}

	source := learn.SourceAuto
	if learnMan {
		source = learn.SourceMan
	}
	learner := learn.NewLearner(learn.NewExecRunner(10*time.Second), e.store, e.idx, cfg.Learn)
	rec, err := learner.Learn(cmd.Context(), name, lang, source)
	if err != nil {
		return fmt.Errorf("learning %s: %w", name, err)
	}
	fmt.Print(ui.Successf("learned %s (%d examples)", rec.Name, len(rec.Examples)))
	fmt.Print(ui.RenderCommand(rec))
	return nil
}
