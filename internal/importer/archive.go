package importer

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mankihq/manki/internal/record"
)

// maxPageSize bounds a single page read from an archive. Real tldr pages
// are under 4KB; anything larger is hostile or corrupt.
const maxPageSize = 1 << 20

// ImportArchive imports every matching page from a .zip or .tar.gz release
// archive, restricted to langs when non-empty.
func (im *Importer) ImportArchive(ctx context.Context, archivePath string, langs []string) (*Stats, error) {
	switch {
	case strings.HasSuffix(archivePath, ".zip"):
		return im.importZip(ctx, archivePath, langs)
	case strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"):
		return im.importTarGz(ctx, archivePath, langs)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}
}

func (im *Importer) importZip(ctx context.Context, path string, langs []string) (*Stats, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer zr.Close()

	stats := &Stats{}
	var imported []*importedPage
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		info, ok := ParsePagePath(f.Name)
		if !ok || !langWanted(info.Lang, langs) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			stats.Failed++
			im.logger.Warn("archive entry unreadable", "entry", f.Name, "error", err)
			continue
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxPageSize))
		rc.Close()
		if err != nil {
			stats.Failed++
			continue
		}
		imported = append(imported, &importedPage{data: data, info: info})
	}
	return im.finish(imported, stats)
}

func (im *Importer) importTarGz(ctx context.Context, path string, langs []string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading archive %s: %w", path, err)
	}
	defer gz.Close()

	stats := &Stats{}
	var imported []*importedPage
	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("reading archive %s: %w", path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		info, ok := ParsePagePath(hdr.Name)
		if !ok || !langWanted(info.Lang, langs) {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(tr, maxPageSize))
		if err != nil {
			stats.Failed++
			continue
		}
		imported = append(imported, &importedPage{data: data, info: info})
	}
	return im.finish(imported, stats)
}

type importedPage struct {
	data []byte
	info PageInfo
}

func (im *Importer) finish(pages []*importedPage, stats *Stats) (*Stats, error) {
	var cmds []*record.Command
	for _, pg := range pages {
		im.collect(pg.data, pg.info, stats, &cmds)
	}
	if err := im.flush(cmds, stats); err != nil {
		return stats, err
	}
	return stats, nil
}
