package importer

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mankihq/manki/internal/index"
	"github.com/mankihq/manki/internal/store"
)

func newTestImporter(t *testing.T) (*Importer, *store.Store, *index.Manager) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "manki.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	idx, err := index.Open(filepath.Join(dir, "index"))
	if err != nil {
		t.Fatal(err)
	}
	return New(s, idx), s, idx
}

func TestParsePagePath(t *testing.T) {
	tests := []struct {
		path string
		want PageInfo
		ok   bool
	}{
		{"pages/common/tar.md", PageInfo{Name: "tar", Lang: "en", Platform: "common"}, true},
		{"pages.zh/linux/free.md", PageInfo{Name: "free", Lang: "zh", Platform: "linux"}, true},
		{"tldr-main/pages.zh/common/tar.md", PageInfo{Name: "tar", Lang: "zh", Platform: "common"}, true},
		{"pages/common/tar.txt", PageInfo{}, false},
		{"random/dir/file.md", PageInfo{}, false},
		{"tar.md", PageInfo{}, false},
	}
	for _, tt := range tests {
		got, ok := ParsePagePath(tt.path)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParsePagePath(%q) = %+v, %v; want %+v, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func writePage(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const zhTarPage = `# tar

> 归档工具。

- 创建归档:

` + "`tar cf {{目标.tar}}`" + `
`

func TestImportDir(t *testing.T) {
	im, s, idx := newTestImporter(t)
	root := t.TempDir()
	writePage(t, root, "pages/common/docker.md", dockerPage)
	writePage(t, root, "pages.zh/common/tar.md", zhTarPage)
	writePage(t, root, "pages/common/broken.md", "# broken\n\nno description or examples\n")

	stats, err := im.ImportDir(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if stats.Imported != 2 {
		t.Errorf("Imported = %d, want 2", stats.Imported)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if len(stats.SkippedIDs) != 1 || stats.SkippedIDs[0] != "en:broken" {
		t.Errorf("SkippedIDs = %v", stats.SkippedIDs)
	}
	if _, err := s.Get("tar", "zh"); err != nil {
		t.Errorf("zh page not stored: %v", err)
	}
	if _, err := s.Get("broken", "en"); err == nil {
		t.Error("invalid page was persisted")
	}
	if idx.Current().DocCount() != 2 {
		t.Errorf("index DocCount = %d, want 2", idx.Current().DocCount())
	}
}

func TestImportCategoryFollowsPlatform(t *testing.T) {
	im, s, _ := newTestImporter(t)
	root := t.TempDir()
	writePage(t, root, "pages.zh/linux/free.md", `# free

> 显示内存使用情况。

- 显示内存:

`+"`free -h`"+`
`)
	if _, err := im.ImportDir(context.Background(), root, nil); err != nil {
		t.Fatal(err)
	}
	cmd, err := s.Get("free", "zh")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Platform != "linux" || cmd.Category != "linux" {
		t.Errorf("platform/category = %q/%q, want linux/linux", cmd.Platform, cmd.Category)
	}
}

func TestImportDirLangFilter(t *testing.T) {
	im, s, _ := newTestImporter(t)
	root := t.TempDir()
	writePage(t, root, "pages/common/docker.md", dockerPage)
	writePage(t, root, "pages.zh/common/tar.md", zhTarPage)

	stats, err := im.ImportDir(context.Background(), root, []string{"zh"})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Imported != 1 {
		t.Errorf("Imported = %d, want 1", stats.Imported)
	}
	if _, err := s.Get("docker", "en"); err == nil {
		t.Error("filtered language was imported")
	}
}

func TestImportFileOutsideLayout(t *testing.T) {
	im, s, _ := newTestImporter(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "docker.md")
	if err := os.WriteFile(path, []byte(dockerPage), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd, err := im.ImportFile(context.Background(), path, "en")
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if cmd.Name != "docker" || cmd.Platform != "common" {
		t.Errorf("imported record = %+v", cmd)
	}
	if _, err := s.Get("docker", "en"); err != nil {
		t.Errorf("record not stored: %v", err)
	}
}

func TestImportFileNameFollowsPath(t *testing.T) {
	im, _, _ := newTestImporter(t)
	root := t.TempDir()
	// Title inside the page disagrees with the filename; the path wins.
	writePage(t, root, "pages/common/docker-compose.md", dockerPage)
	cmd, err := im.ImportFile(context.Background(), filepath.Join(root, "pages", "common", "docker-compose.md"), "en")
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Name != "docker-compose" {
		t.Errorf("name = %q, want docker-compose", cmd.Name)
	}
}

func TestImportArchiveZip(t *testing.T) {
	im, s, idx := newTestImporter(t)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "tldr.zip")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	entries := map[string]string{
		"tldr-main/pages/common/docker.md": dockerPage,
		"tldr-main/pages.zh/common/tar.md": zhTarPage,
		"tldr-main/README.md":              "# readme\n",
		"tldr-main/pages/common/bad.md":    "not a page\n",
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	stats, err := im.ImportArchive(context.Background(), archivePath, nil)
	if err != nil {
		t.Fatalf("ImportArchive: %v", err)
	}
	if stats.Imported != 2 {
		t.Errorf("Imported = %d, want 2", stats.Imported)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if _, err := s.Get("docker", "en"); err != nil {
		t.Errorf("docker not stored: %v", err)
	}
	if idx.Current().DocCount() != 2 {
		t.Errorf("index DocCount = %d", idx.Current().DocCount())
	}
}

func TestImportArchiveUnsupported(t *testing.T) {
	im, _, _ := newTestImporter(t)
	if _, err := im.ImportArchive(context.Background(), "pages.rar", nil); err == nil {
		t.Error("expected error for unsupported archive format")
	}
}
