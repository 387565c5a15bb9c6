package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mankihq/manki/internal/index"
	"github.com/mankihq/manki/internal/index/postings"
	"github.com/mankihq/manki/internal/record"
	"github.com/mankihq/manki/internal/store"
	"github.com/mankihq/manki/internal/tokenizer"
	"github.com/mankihq/manki/pkg/config"
	"github.com/mankihq/manki/pkg/logger"
)

// Result is one hit: the full stored record plus its relevance score.
type Result struct {
	record.Command
	Score float64 `json:"score"`
}

// Response is a ranked, paged answer to one query.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	TookMS  int64    `json:"took_ms"`
}

// Engine executes queries against the current index snapshot and hydrates
// hits from the record store.
type Engine struct {
	store  *store.Store
	idx    *index.Manager
	cfg    config.SearchConfig
	logger *slog.Logger
}

// NewEngine builds an Engine over the given store and index.
func NewEngine(s *store.Store, idx *index.Manager, cfg config.SearchConfig) *Engine {
	return &Engine{
		store:  s,
		idx:    idx,
		cfg:    cfg,
		logger: logger.WithComponent("search"),
	}
}

// Search runs a query. Raw punctuation in query is treated literally; lang
// ("" for all languages) restricts candidates before scoring; limit <= 0
// falls back to the configured default and is always clamped to the
// configured maximum. A query with no usable terms returns an empty
// Response, not an error.
func (e *Engine) Search(ctx context.Context, query, lang string, limit int) (*Response, error) {
	start := time.Now()
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxResults {
		limit = e.cfg.MaxResults
	}

	resp := &Response{Results: []Result{}}
	if strings.TrimSpace(query) == "" {
		resp.TookMS = time.Since(start).Milliseconds()
		return resp, nil
	}

	plan, err := Parse(tokenizer.EscapeQuery(query))
	if err != nil {
		return nil, err
	}
	if len(plan.Terms) == 0 {
		resp.TookMS = time.Since(start).Milliseconds()
		return resp, nil
	}

	snap := e.idx.Current()
	postingsPerTerm := make(map[string]postings.PostingList, len(plan.Terms))
	for _, term := range plan.Terms {
		pl := snap.Postings(term)
		if lang != "" {
			pl = filterLang(pl, snap, lang)
		}
		if len(pl) > 0 {
			postingsPerTerm[term] = pl
		}
	}

	ranked := Rank(postingsPerTerm, RankParams{
		TotalDocs:    snap.DocCount(),
		AvgDocLength: snap.AvgDocLen(),
		Boosts: [postings.FieldCount]float64{
			postings.FieldName:        e.cfg.Boosts.Name,
			postings.FieldDescription: e.cfg.Boosts.Description,
			postings.FieldContent:     e.cfg.Boosts.Content,
		},
	}, snap.Docs())
	resp.Total = len(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	for _, sd := range ranked {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, ok := snap.Doc(sd.DocID)
		if !ok {
			continue
		}
		cmd, err := e.store.Get(doc.Name, doc.Lang)
		if err != nil {
			// The index and the store are updated in lockstep, but a
			// snapshot read racing a delete can still miss. Skip the hit.
			e.logger.Warn("hit missing from store", "doc", sd.DocID, "error", err)
			continue
		}
		resp.Results = append(resp.Results, Result{Command: *cmd, Score: sd.Score})
	}
	resp.TookMS = time.Since(start).Milliseconds()
	e.logger.Debug("query executed",
		"query", query,
		"lang", lang,
		"terms", len(plan.Terms),
		"total", resp.Total,
		"took_ms", resp.TookMS)
	return resp, nil
}

func filterLang(pl postings.PostingList, snap *index.Snapshot, lang string) postings.PostingList {
	if pl == nil {
		return nil
	}
	out := make(postings.PostingList, 0, len(pl))
	for _, p := range pl {
		if doc, ok := snap.Doc(p.DocID); ok && doc.Lang == lang {
			out = append(out, p)
		}
	}
	return out
}
