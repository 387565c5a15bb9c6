package importer

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mankihq/manki/internal/index"
	"github.com/mankihq/manki/internal/record"
	"github.com/mankihq/manki/internal/store"
	apperr "github.com/mankihq/manki/pkg/errors"
	"github.com/mankihq/manki/pkg/logger"
)

// Stats summarises one batch import. Skipped pages failed validation
// (missing name, description, or examples); failures are read errors.
type Stats struct {
	Imported   int      `json:"imported"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	SkippedIDs []string `json:"skipped_ids,omitempty"`
}

// PageInfo is the identity a page's path carries: pages[.lang]/platform/name.md.
type PageInfo struct {
	Name     string
	Lang     string
	Platform string
}

// Importer parses page files and lands the records in the store and index.
type Importer struct {
	store  *store.Store
	idx    *index.Manager
	logger *slog.Logger
}

// New builds an Importer over the given store and index.
func New(s *store.Store, idx *index.Manager) *Importer {
	return &Importer{
		store:  s,
		idx:    idx,
		logger: logger.WithComponent("importer"),
	}
}

// ParsePagePath extracts page identity from a tldr-layout path. The language
// defaults to "en" for the bare "pages" tree; "pages.zh" and friends carry
// their language as the suffix.
func ParsePagePath(p string) (PageInfo, bool) {
	p = filepath.ToSlash(p)
	if !strings.HasSuffix(p, ".md") {
		return PageInfo{}, false
	}
	parts := strings.Split(p, "/")
	if len(parts) < 3 {
		return PageInfo{}, false
	}
	name := strings.TrimSuffix(parts[len(parts)-1], ".md")
	platform := parts[len(parts)-2]
	pagesDir := parts[len(parts)-3]
	if pagesDir != "pages" && !strings.HasPrefix(pagesDir, "pages.") {
		return PageInfo{}, false
	}
	lang := "en"
	if rest := strings.TrimPrefix(pagesDir, "pages"); strings.HasPrefix(rest, ".") {
		lang = rest[1:]
	}
	if name == "" || platform == "" || lang == "" {
		return PageInfo{}, false
	}
	return PageInfo{Name: name, Lang: lang, Platform: platform}, true
}

// ImportFile imports a single page. The path decides language and platform
// when it follows the tldr layout; otherwise lang applies and the platform
// defaults.
func (im *Importer) ImportFile(ctx context.Context, filePath, lang string) (*record.Command, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	info, ok := ParsePagePath(filePath)
	if !ok {
		info = PageInfo{
			Name: strings.TrimSuffix(filepath.Base(filePath), ".md"),
			Lang: lang,
		}
	}
	cmd, err := im.parsePage(data, info)
	if err != nil {
		return nil, err
	}
	if err := im.store.Put(cmd); err != nil {
		return nil, err
	}
	if err := im.idx.Upsert(cmd); err != nil {
		return nil, err
	}
	im.logger.Info("page imported", "name", cmd.Name, "lang", cmd.Lang)
	return cmd, nil
}

func (im *Importer) parsePage(data []byte, info PageInfo) (*record.Command, error) {
	cmd, err := ParseMarkdown(data, info.Lang)
	if err != nil {
		return nil, err
	}
	// The path is authoritative for identity; the title inside the file can
	// disagree with the filename in upstream pages. Pages carry no category
	// of their own, so the platform doubles as the category.
	if info.Name != "" {
		cmd.Name = info.Name
	}
	if info.Platform != "" {
		cmd.Platform = info.Platform
		cmd.Category = info.Platform
	}
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// ImportDir walks a directory tree, importing every page file in it. One
// file's failure never aborts the batch; everything that parsed lands in a
// single store batch and one index snapshot.
func (im *Importer) ImportDir(ctx context.Context, dir string, langs []string) (*Stats, error) {
	type page struct {
		path string
		info PageInfo
	}
	var pages []page
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".md") {
			return nil
		}
		rel, rerr := filepath.Rel(dir, p)
		if rerr != nil {
			rel = p
		}
		info, ok := ParsePagePath(rel)
		if !ok {
			info, ok = ParsePagePath(p)
		}
		if !ok {
			info = PageInfo{Name: strings.TrimSuffix(filepath.Base(p), ".md"), Lang: "en"}
		}
		if !langWanted(info.Lang, langs) {
			return nil
		}
		pages = append(pages, page{path: p, info: info})
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	var mu sync.Mutex
	var imported []*record.Command

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, pg := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(pg.path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				im.logger.Warn("page unreadable", "path", pg.path, "error", err)
				return nil
			}
			im.collect(data, pg.info, stats, &imported)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	if err := im.flush(imported, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// collect parses one page and files it under the right counter. Callers hold
// the batch mutex.
func (im *Importer) collect(data []byte, info PageInfo, stats *Stats, imported *[]*record.Command) {
	cmd, err := im.parsePage(data, info)
	if err != nil {
		id := record.Key(info.Name, info.Lang)
		if errors.Is(err, apperr.ErrInvalidInput) || errors.Is(err, apperr.ErrUnlearnable) {
			stats.Skipped++
			stats.SkippedIDs = append(stats.SkippedIDs, id)
			im.logger.Debug("page skipped", "id", id, "reason", err)
		} else {
			stats.Failed++
			im.logger.Warn("page failed", "id", id, "error", err)
		}
		return
	}
	*imported = append(*imported, cmd)
	stats.Imported++
}

func (im *Importer) flush(imported []*record.Command, stats *Stats) error {
	sort.Slice(imported, func(i, j int) bool { return imported[i].Key() < imported[j].Key() })
	sort.Strings(stats.SkippedIDs)
	if len(imported) == 0 {
		return nil
	}
	if err := im.store.PutBatch(imported); err != nil {
		return err
	}
	if err := im.idx.UpsertBatch(imported); err != nil {
		return err
	}
	im.logger.Info("batch imported",
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return nil
}

func langWanted(lang string, langs []string) bool {
	if len(langs) == 0 {
		return true
	}
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}
