package learn

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mankihq/manki/internal/index"
	"github.com/mankihq/manki/internal/store"
	"github.com/mankihq/manki/pkg/config"
	apperr "github.com/mankihq/manki/pkg/errors"
)

// fakeRunner serves canned capture text keyed by command name.
type fakeRunner struct {
	help map[string]string
	man  map[string]string
	errs map[string]error
}

func (f *fakeRunner) Help(_ context.Context, name string) (string, error) {
	if err := f.errs[name]; err != nil {
		return "", err
	}
	return f.help[name], nil
}

func (f *fakeRunner) Man(_ context.Context, name string) (string, error) {
	if err := f.errs[name]; err != nil {
		return "", err
	}
	return f.man[name], nil
}

func newTestLearner(t *testing.T, runner Runner) (*Learner, *store.Store, *index.Manager) {
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
	cfg := config.LearnConfig{MaxExamples: 10, MaxOptionExamples: 5}
	return NewLearner(runner, s, idx, cfg), s, idx
}

func TestLearnPersistsAndIndexes(t *testing.T) {
	runner := &fakeRunner{help: map[string]string{"cat": catHelp}}
	l, s, idx := newTestLearner(t, runner)

	cmd, err := l.Learn(context.Background(), "cat", "en", SourceAuto)
	if err != nil {
		t.Fatalf("Learn: %v", err)
	}
	if cmd.Name != "cat" {
		t.Errorf("name = %q", cmd.Name)
	}
	stored, err := s.Get("cat", "en")
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if stored.Description == "" || len(stored.Examples) == 0 {
		t.Errorf("persisted record incomplete: %+v", stored)
	}
	snap := idx.Current()
	if snap.DocCount() != 1 {
		t.Errorf("DocCount = %d, want 1", snap.DocCount())
	}
	if snap.Postings("concatenate") == nil {
		t.Error("description terms not indexed")
	}
}

func TestLearnUnlearnableNotPersisted(t *testing.T) {
	runner := &fakeRunner{help: map[string]string{"mystery": "garbage\n"}}
	l, s, idx := newTestLearner(t, runner)

	_, err := l.Learn(context.Background(), "mystery", "en", SourceAuto)
	if !errors.Is(err, apperr.ErrUnlearnable) {
		t.Fatalf("expected ErrUnlearnable, got %v", err)
	}
	if _, err := s.Get("mystery", "en"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("unlearnable record was persisted")
	}
	if idx.Current().DocCount() != 0 {
		t.Error("unlearnable record was indexed")
	}
}

func TestLearnFallsBackToManCapture(t *testing.T) {
	runner := &fakeRunner{
		help: map[string]string{"ls": ""},
		man:  map[string]string{"ls": lsMan},
	}
	l, _, _ := newTestLearner(t, runner)
	cmd, err := l.Learn(context.Background(), "ls", "en", SourceAuto)
	if err != nil {
		t.Fatalf("Learn: %v", err)
	}
	if cmd.Description != "list directory contents" {
		t.Errorf("description = %q", cmd.Description)
	}
}

func TestLearnAll(t *testing.T) {
	runner := &fakeRunner{
		help: map[string]string{
			"cat":     catHelp,
			"mystery": "nothing useful",
		},
		errs: map[string]error{
			"broken": errors.New("exec failed"),
		},
	}
	runner.man = map[string]string{"ls": lsMan}
	l, s, idx := newTestLearner(t, runner)

	stats, err := l.LearnAll(context.Background(), []string{"cat", "ls", "mystery", "broken"}, "en", 2)
	if err != nil {
		t.Fatalf("LearnAll: %v", err)
	}
	if stats.Learned != 2 {
		t.Errorf("Learned = %d, want 2", stats.Learned)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	if len(stats.SkippedNames) != 1 || stats.SkippedNames[0] != "mystery" {
		t.Errorf("SkippedNames = %v", stats.SkippedNames)
	}
	n, _ := s.Count()
	if n != 2 {
		t.Errorf("store count = %d, want 2", n)
	}
	if idx.Current().DocCount() != 2 {
		t.Errorf("index count = %d, want 2", idx.Current().DocCount())
	}
}
