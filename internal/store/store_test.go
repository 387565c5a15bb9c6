package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mankihq/manki/internal/record"
	apperr "github.com/mankihq/manki/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "manki.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCommand(name, lang string) *record.Command {
	return &record.Command{
		Name:        name,
		Description: "description of " + name,
		Category:    "common",
		Platform:    "common",
		Lang:        lang,
		Examples: []record.Example{
			{Description: "basic usage", Code: name + " file"},
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := testCommand("grep", "en")
	if err := s.Put(want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get("grep", "en")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != want.Name || got.Description != want.Description || len(got.Examples) != 1 {
		t.Errorf("Get returned %+v, want %+v", got, want)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("nope", "en"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPutReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	first := testCommand("tar", "en")
	if err := s.Put(first); err != nil {
		t.Fatal(err)
	}
	second := testCommand("tar", "en")
	second.Description = "updated description"
	if err := s.Put(second); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("tar", "en")
	if err != nil {
		t.Fatal(err)
	}
	if got.Description != "updated description" {
		t.Errorf("expected replacement, got %q", got.Description)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestSameNameDifferentLang(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutBatch([]*record.Command{
		testCommand("ls", "en"),
		testCommand("ls", "zh"),
	}); err != nil {
		t.Fatal(err)
	}
	n, _ := s.Count()
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	if _, err := s.Get("ls", "zh"); err != nil {
		t.Errorf("zh record missing: %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put(testCommand("rm", "en")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("rm", "en"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("rm", "en"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete("rm", "en"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestListLang(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutBatch([]*record.Command{
		testCommand("awk", "en"),
		testCommand("sed", "en"),
		testCommand("awk", "zh"),
	}); err != nil {
		t.Fatal(err)
	}
	en, err := s.ListLang("en")
	if err != nil {
		t.Fatal(err)
	}
	if len(en) != 2 {
		t.Fatalf("ListLang(en) returned %d records, want 2", len(en))
	}
	if en[0].Name != "awk" || en[1].Name != "sed" {
		t.Errorf("ListLang not ordered by key: %s, %s", en[0].Name, en[1].Name)
	}
	all, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("List returned %d records, want 3", len(all))
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetMetadata(&record.Metadata{Version: "v2.3", LastUpdate: "2026-08-28"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutBatch([]*record.Command{
		testCommand("cat", "en"),
		testCommand("cat", "zh"),
	}); err != nil {
		t.Fatal(err)
	}
	meta, err := s.Metadata()
	if err != nil {
		t.Fatal(err)
	}
	if meta.Version != "v2.3" {
		t.Errorf("Version = %q", meta.Version)
	}
	if meta.CommandCount != 2 {
		t.Errorf("CommandCount = %d, want 2", meta.CommandCount)
	}
	if len(meta.Languages) != 2 || meta.Languages[0] != "en" || meta.Languages[1] != "zh" {
		t.Errorf("Languages = %v", meta.Languages)
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put(testCommand("du", "en")); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Count after reset = %d, want 0", n)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manki.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(testCommand("find", "en")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if _, err := s2.Get("find", "en"); err != nil {
		t.Errorf("record lost across reopen: %v", err)
	}
}
