package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mankihq/manki/internal/importer"
	"github.com/mankihq/manki/internal/learn"
	"github.com/mankihq/manki/internal/search"
	"github.com/mankihq/manki/internal/server"
	"github.com/mankihq/manki/internal/ui"
	"github.com/mankihq/manki/internal/update"
	"github.com/mankihq/manki/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the knowledge base over HTTP",
	Long: `Run the JSON API server: search, record CRUD, learn/import/update
triggers, health checks, and Prometheus metrics. The server binds
loopback by default and shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	m := metrics.New()
	var cache *server.QueryCache
	if cfg.Cache.Enabled {
		cache = server.NewQueryCache(cfg.Cache, m)
		if cache != nil {
			defer cache.Close()
		}
	}

	engine := search.NewEngine(e.store, e.idx, cfg.Search)
	learner := learn.NewLearner(learn.NewExecRunner(10*time.Second), e.store, e.idx, cfg.Learn)
	im := importer.New(e.store, e.idx)
	up := update.New(cfg.Update, im, e.store)

	h := server.NewHandler(engine, e.store, e.idx, learner, im, up, cache, m)
	srv := server.New(cfg.Server, h, m)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(m, cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				fmt.Fprint(os.Stderr, ui.Errorf("metrics shutdown: %v", err))
			}
		}()
	}

	return srv.Run(ctx)
}
