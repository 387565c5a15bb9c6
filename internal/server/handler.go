package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mankihq/manki/internal/importer"
	"github.com/mankihq/manki/internal/index"
	"github.com/mankihq/manki/internal/learn"
	"github.com/mankihq/manki/internal/record"
	"github.com/mankihq/manki/internal/search"
	"github.com/mankihq/manki/internal/store"
	"github.com/mankihq/manki/internal/update"
	apperr "github.com/mankihq/manki/pkg/errors"
	"github.com/mankihq/manki/pkg/logger"
	"github.com/mankihq/manki/pkg/metrics"
)

// Handler implements the JSON API.
type Handler struct {
	engine   *search.Engine
	store    *store.Store
	idx      *index.Manager
	learner  *learn.Learner
	importer *importer.Importer
	updater  *update.Updater
	cache    *QueryCache
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewHandler wires the API handler over its collaborators. cache may be nil
// (cache disabled); everything else is required.
func NewHandler(engine *search.Engine, s *store.Store, idx *index.Manager, learner *learn.Learner, im *importer.Importer, up *update.Updater, cache *QueryCache, m *metrics.Metrics) *Handler {
	return &Handler{
		engine:   engine,
		store:    s,
		idx:      idx,
		learner:  learner,
		importer: im,
		updater:  up,
		cache:    cache,
		metrics:  m,
		logger:   logger.WithComponent("api"),
	}
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	lang := r.URL.Query().Get("lang")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, r, apperr.New(apperr.ErrInvalidInput, http.StatusBadRequest, "limit must be an integer"))
			return
		}
		limit = n
	}

	start := time.Now()
	resp, cached, err := h.cache.GetOrCompute(r.Context(), q, lang, limit, func() (*search.Response, error) {
		return h.engine.Search(r.Context(), q, lang, limit)
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(langLabel(lang), status).Inc()
	h.metrics.SearchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.SearchResultsCount.Observe(float64(resp.Total))
	if cached {
		w.Header().Set("X-Cache", "hit")
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.store.Get(r.PathValue("name"), r.PathValue("lang"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cmd)
}

func (h *Handler) handleDeleteCommand(w http.ResponseWriter, r *http.Request) {
	name, lang := r.PathValue("name"), r.PathValue("lang")
	if err := h.store.Delete(name, lang); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.idx.Delete(name, lang); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		h.writeError(w, r, err)
		return
	}
	h.afterWrite(r)
	h.writeJSON(w, http.StatusOK, map[string]string{"deleted": lang + ":" + name})
}

func (h *Handler) handleListCommands(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	var (
		cmds []*record.Command
		err  error
	)
	if lang != "" {
		cmds, err = h.store.ListLang(lang)
	} else {
		cmds, err = h.store.List()
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries := make([]listEntry, 0, len(cmds))
	for _, c := range cmds {
		entries = append(entries, listEntry{
			Name:        c.Name,
			Lang:        c.Lang,
			Description: c.Description,
			Platform:    c.Platform,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"commands": entries,
		"total":    len(entries),
	})
}

type listEntry struct {
	Name        string `json:"name"`
	Lang        string `json:"lang"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
}

func (h *Handler) handleMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.Metadata()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, meta)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := h.idx.Current()
	count, err := h.store.Count()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"records":        count,
		"indexed_docs":   snap.DocCount(),
		"distinct_terms": snap.TermCount(),
		"index_version":  snap.Version(),
		"built_at":       snap.BuiltAt(),
	})
}

type learnRequest struct {
	Name   string `json:"name"`
	Lang   string `json:"lang"`
	Source string `json:"source"`
}

func (h *Handler) handleLearn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.writeError(w, r, apperr.New(apperr.ErrInvalidInput, http.StatusBadRequest, "body must carry a command name"))
		return
	}
	if req.Lang == "" {
		req.Lang = "en"
	}
	source := learn.SourceAuto
	switch req.Source {
	case "", "auto":
	case "help":
		source = learn.SourceHelp
	case "man":
		source = learn.SourceMan
	default:
		h.writeError(w, r, apperr.New(apperr.ErrInvalidInput, http.StatusBadRequest, "source must be auto, help, or man"))
		return
	}

	cmd, err := h.learner.Learn(r.Context(), req.Name, req.Lang, source)
	if err != nil {
		h.metrics.RecordsLearnedTotal.WithLabelValues("error").Inc()
		h.writeError(w, r, err)
		return
	}
	h.metrics.RecordsLearnedTotal.WithLabelValues("ok").Inc()
	h.afterWrite(r)
	h.writeJSON(w, http.StatusCreated, cmd)
}

type importRequest struct {
	Path  string   `json:"path"`
	Langs []string `json:"langs"`
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		h.writeError(w, r, apperr.New(apperr.ErrInvalidInput, http.StatusBadRequest, "body must carry a path"))
		return
	}
	stats, err := h.runImport(r, req)
	if err != nil {
		h.metrics.RecordsImportedTotal.WithLabelValues("error").Inc()
		h.writeError(w, r, err)
		return
	}
	h.metrics.RecordsImportedTotal.WithLabelValues("ok").Add(float64(stats.Imported))
	h.afterWrite(r)
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) runImport(r *http.Request, req importRequest) (*importer.Stats, error) {
	if isArchivePath(req.Path) {
		return h.importer.ImportArchive(r.Context(), req.Path, req.Langs)
	}
	return h.importer.ImportDir(r.Context(), req.Path, req.Langs)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Force bool `json:"force"`
	}
	// Body is optional; an empty or absent body means a non-forced update.
	_ = json.NewDecoder(r.Body).Decode(&req)

	stats, version, err := h.updater.Run(r.Context(), req.Force)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if stats == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{
			"version":    version,
			"up_to_date": true,
		})
		return
	}
	h.afterWrite(r)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"version": version,
		"stats":   stats,
	})
}

// afterWrite refreshes write-dependent state: the cache is stale and the
// snapshot gauge has moved.
func (h *Handler) afterWrite(r *http.Request) {
	h.cache.Invalidate(r.Context())
	h.metrics.SnapshotDocs.Set(float64(h.idx.Current().DocCount()))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response encode failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"
	var appErr *apperr.AppError
	switch {
	case errors.As(err, &appErr):
		status = appErr.StatusCode
		message = appErr.Message
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrEncoding):
		status = http.StatusBadRequest
		message = err.Error()
	// ErrQueryBuild is deliberately absent: query escaping makes it
	// unreachable from user input, so it falls through as a 500 defect.
	case errors.Is(err, apperr.ErrUnlearnable):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	}
	if status >= 500 {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}

func langLabel(lang string) string {
	if lang == "" {
		return "all"
	}
	return lang
}

func isArchivePath(p string) bool {
	for _, suffix := range []string{".zip", ".tar.gz", ".tgz"} {
		if len(p) > len(suffix) && p[len(p)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}
