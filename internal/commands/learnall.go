package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/learn"
	"github.com/mankihq/manki/internal/ui"
)

var (
	learnAllLang         string
	learnAllConcurrency  int
	learnAllLimit        int
	learnAllPrefix       string
	learnAllSkipExisting bool
)

var learnAllCmd = &cobra.Command{
	Use:   "learn-all",
	Short: "Learn every executable found on PATH",
	Long: `Walk PATH, collect every executable name, and learn each one with
bounded concurrency. Commands without usable documentation are skipped
and reported; individual failures never abort the run.`,
	Example: `  # Learn everything git-related, keeping records already present
  manki learn-all --prefix git --skip-existing

  # Trial run over the first 50 candidates
  manki learn-all --limit 50`,
	Args: cobra.NoArgs,
	RunE: runLearnAll,
}

func init() {
	learnAllCmd.Flags().StringVar(&learnAllLang, "lang", "", "language tag for the records (default from config)")
	learnAllCmd.Flags().IntVar(&learnAllConcurrency, "concurrency", 4, "parallel capture workers")
	learnAllCmd.Flags().IntVar(&learnAllLimit, "limit", 0, "learn at most this many commands (0 = all)")
	learnAllCmd.Flags().StringVar(&learnAllPrefix, "prefix", "", "only learn commands with this name prefix")
	learnAllCmd.Flags().BoolVar(&learnAllSkipExisting, "skip-existing", false, "leave commands that are already known alone")
	rootCmd.AddCommand(learnAllCmd)
}

func runLearnAll(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	lang := learnAllLang
	if lang == "" {
		lang = cfg.Search.DefaultLang
	}

	names := learn.DiscoverCommands()
	if learnAllPrefix != "" {
		filtered := names[:0]
		for _, n := range names {
			if strings.HasPrefix(n, learnAllPrefix) {
				filtered = append(filtered, n)
			}
		}
		names = filtered
	}
	if learnAllSkipExisting {
		filtered := names[:0]
		for _, n := range names {
			if _, err := e.store.Get(n, lang); err != nil {
				filtered = append(filtered, n)
			}
		}
		names = filtered
	}
	if learnAllLimit > 0 && len(names) > learnAllLimit {
		names = names[:learnAllLimit]
	}
	fmt.Printf("learning %d commands from PATH\n", len(names))

	learner := learn.NewLearner(learn.NewExecRunner(10*time.Second), e.store, e.idx, cfg.Learn)
	stats, err := learner.LearnAll(cmd.Context(), names, lang, learnAllConcurrency)
	if stats != nil {
		fmt.Print(ui.RenderLearnStats(stats))
	}
	if err != nil {
		return fmt.Errorf("bulk learn: %w", err)
	}
	return nil
}
