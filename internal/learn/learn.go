package learn

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mankihq/manki/internal/index"
	"github.com/mankihq/manki/internal/record"
	"github.com/mankihq/manki/internal/store"
	"github.com/mankihq/manki/pkg/config"
	apperr "github.com/mankihq/manki/pkg/errors"
	"github.com/mankihq/manki/pkg/logger"
)

// Stats summarises a bulk learn run. Skipped commands are unlearnable (no
// usable documentation); failures are capture or runtime errors.
type Stats struct {
	Learned      int      `json:"learned"`
	Skipped      int      `json:"skipped"`
	Failed       int      `json:"failed"`
	SkippedNames []string `json:"skipped_names,omitempty"`
}

// Learner captures, parses, persists, and indexes command documentation.
type Learner struct {
	runner Runner
	store  *store.Store
	idx    *index.Manager
	opts   Options
	logger *slog.Logger
}

// NewLearner wires a Learner over the given collaborators.
func NewLearner(runner Runner, s *store.Store, idx *index.Manager, cfg config.LearnConfig) *Learner {
	return &Learner{
		runner: runner,
		store:  s,
		idx:    idx,
		opts: Options{
			MaxExamples:       cfg.MaxExamples,
			MaxOptionExamples: cfg.MaxOptionExamples,
		},
		logger: logger.WithComponent("learn"),
	}
}

// Learn captures and parses one command's documentation, then persists and
// indexes the resulting record. The man page is only captured when help
// output alone is not learnable, or when the caller prefers man.
func (l *Learner) Learn(ctx context.Context, name, lang string, preferred Source) (*record.Command, error) {
	cmd, err := l.parse(ctx, name, lang, preferred)
	if err != nil {
		return nil, err
	}
	if err := l.store.Put(cmd); err != nil {
		return nil, err
	}
	if err := l.idx.Upsert(cmd); err != nil {
		return nil, err
	}
	l.logger.Info("command learned", "name", name, "lang", lang, "examples", len(cmd.Examples))
	return cmd, nil
}

func (l *Learner) parse(ctx context.Context, name, lang string, preferred Source) (*record.Command, error) {
	var capture Capture
	var err error
	if preferred != SourceMan {
		capture.Help, err = l.runner.Help(ctx, name)
		if err != nil {
			return nil, err
		}
		cmd, perr := Parse(name, lang, capture, preferred, l.opts)
		if perr == nil {
			return cmd, nil
		}
		if !errors.Is(perr, apperr.ErrUnlearnable) {
			return nil, perr
		}
	}
	capture.Man, err = l.runner.Man(ctx, name)
	if err != nil {
		return nil, err
	}
	return Parse(name, lang, capture, preferred, l.opts)
}

// LearnAll learns every named command with bounded concurrency. Per-command
// failures never abort the batch; all successful records land in one store
// batch and one index snapshot.
func (l *Learner) LearnAll(ctx context.Context, names []string, lang string, concurrency int) (*Stats, error) {
	if concurrency <= 0 {
		concurrency = 4
	}
	stats := &Stats{}
	var mu sync.Mutex
	var learned []*record.Command

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, name := range names {
		g.Go(func() error {
			cmd, err := l.parse(ctx, name, lang, SourceAuto)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				if verr := cmd.Validate(); verr != nil {
					stats.Skipped++
					stats.SkippedNames = append(stats.SkippedNames, name)
					return nil
				}
				learned = append(learned, cmd)
				stats.Learned++
			case errors.Is(err, apperr.ErrUnlearnable):
				stats.Skipped++
				stats.SkippedNames = append(stats.SkippedNames, name)
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				stats.Failed++
				l.logger.Warn("learn failed", "name", name, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	sort.Slice(learned, func(i, j int) bool { return learned[i].Key() < learned[j].Key() })
	sort.Strings(stats.SkippedNames)
	if len(learned) > 0 {
		if err := l.store.PutBatch(learned); err != nil {
			return stats, err
		}
		if err := l.idx.UpsertBatch(learned); err != nil {
			return stats, err
		}
	}
	l.logger.Info("bulk learn finished",
		"learned", stats.Learned,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, nil
}
