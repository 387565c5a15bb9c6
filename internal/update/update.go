// Package update checks upstream tldr-pages releases, downloads the page
// archive, and re-imports it into the local knowledge base.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mankihq/manki/internal/importer"
	"github.com/mankihq/manki/internal/record"
	"github.com/mankihq/manki/internal/store"
	"github.com/mankihq/manki/pkg/config"
	"github.com/mankihq/manki/pkg/logger"
)

// Updater drives the check-download-import cycle.
type Updater struct {
	cfg      config.UpdateConfig
	client   *http.Client
	importer *importer.Importer
	store    *store.Store
	logger   *slog.Logger
}

// New builds an Updater. The HTTP client carries the configured timeout.
func New(cfg config.UpdateConfig, im *importer.Importer, s *store.Store) *Updater {
	return &Updater{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		importer: im,
		store:    s,
		logger:   logger.WithComponent("update"),
	}
}

// LatestVersion asks the GitHub releases API for the newest tag. A failed
// check falls back to the pinned version rather than blocking the update.
func (u *Updater) LatestVersion(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.cfg.GithubAPIURL, nil)
	if err != nil {
		return u.cfg.FallbackVersion
	}
	req.Header.Set("User-Agent", u.cfg.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := u.client.Do(req)
	if err != nil {
		u.logger.Warn("release check failed, using fallback",
			"fallback", u.cfg.FallbackVersion, "error", err)
		return u.cfg.FallbackVersion
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		u.logger.Warn("release check failed, using fallback",
			"fallback", u.cfg.FallbackVersion, "status", resp.StatusCode)
		return u.cfg.FallbackVersion
	}
	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil || release.TagName == "" {
		return u.cfg.FallbackVersion
	}
	return strings.TrimPrefix(release.TagName, "v")
}

// Download fetches the release archive for version into destDir and returns
// the archive path.
func (u *Updater) Download(ctx context.Context, version, destDir string) (string, error) {
	url := strings.ReplaceAll(u.cfg.DownloadURLTemplate, "{version}", version)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", u.cfg.UserAgent)
	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %d", url, resp.StatusCode)
	}

	path := filepath.Join(destDir, filepath.Base(url))
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("saving archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

// Run performs a full update: resolve version, download, import, record
// metadata. It returns the import statistics and the version applied. When
// the resolved version already matches the stored metadata and force is
// false, Run returns nil stats without downloading.
func (u *Updater) Run(ctx context.Context, force bool) (*importer.Stats, string, error) {
	version := u.LatestVersion(ctx)
	if !force {
		if meta, err := u.store.Metadata(); err == nil && meta.Version == version {
			u.logger.Info("pages already current", "version", version)
			return nil, version, nil
		}
	}
	u.logger.Info("updating pages", "version", version)

	tmpDir, err := os.MkdirTemp("", "manki-update-*")
	if err != nil {
		return nil, version, err
	}
	defer os.RemoveAll(tmpDir)

	archive, err := u.Download(ctx, version, tmpDir)
	if err != nil {
		return nil, version, err
	}
	stats, err := u.importer.ImportArchive(ctx, archive, u.cfg.Languages)
	if err != nil {
		return stats, version, err
	}
	count, err := u.store.Count()
	if err != nil {
		return stats, version, err
	}
	meta := &record.Metadata{
		Version:      version,
		CommandCount: count,
		LastUpdate:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := u.store.SetMetadata(meta); err != nil {
		return stats, version, err
	}
	u.logger.Info("update finished",
		"version", version,
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, version, nil
}
