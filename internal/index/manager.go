package index

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mankihq/manki/internal/index/postings"
	"github.com/mankihq/manki/internal/index/segment"
	"github.com/mankihq/manki/internal/record"
	"github.com/mankihq/manki/internal/tokenizer"
	apperr "github.com/mankihq/manki/pkg/errors"
	"github.com/mankihq/manki/pkg/logger"
)

// Manager owns the index directory. It serialises writers with a mutex and
// publishes finished snapshots through an atomic pointer, so reads never
// block behind a write and never observe a half-applied mutation.
type Manager struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	dir     string
	writer  *segment.Writer
	logger  *slog.Logger
}

// Open loads the index in dir, recovering the last published snapshot from
// the manifest. A missing manifest yields an empty index, and so does a
// corrupt manifest or segment: the records themselves live in the store and
// the index can be rebuilt, so recovery failure must never take the process
// down. Leftover .tmp files from an interrupted write are cleaned up.
func Open(dir string) (*Manager, error) {
	m := &Manager{
		dir:    dir,
		writer: segment.NewWriter(dir),
		logger: logger.WithComponent("index"),
	}
	manifest, err := segment.LoadManifest(dir)
	if errors.Is(err, segment.ErrNoManifest) {
		m.current.Store(emptySnapshot())
		return m, nil
	}
	if err != nil {
		m.logger.Warn("manifest unreadable, starting empty", "error", err)
		m.current.Store(emptySnapshot())
		return m, nil
	}
	entries, docs, err := loadSegment(filepath.Join(dir, manifest.Segment))
	if err != nil {
		m.logger.Warn("segment unreadable, starting empty",
			"segment", manifest.Segment, "error", err)
		// Keep the manifest's version so the next publish stays monotonic.
		empty := emptySnapshot()
		empty.version = manifest.Version
		m.current.Store(empty)
		return m, nil
	}
	snap := snapshotFrom(entries, docs, manifest)
	m.current.Store(snap)
	segment.RemoveStaleSegments(dir, manifest.Segment)
	m.logger.Info("index recovered",
		"version", snap.version,
		"docs", snap.DocCount(),
		"terms", snap.TermCount())
	return m, nil
}

func loadSegment(path string) ([]postings.TermEntry, map[string]postings.DocEntry, error) {
	reader, err := segment.OpenReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()
	entries, err := reader.LoadAll()
	if err != nil {
		return nil, nil, err
	}
	return entries, reader.Docs(), nil
}

// Current returns the latest published snapshot.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Rebuild replaces the whole index with one built from cmds.
func (m *Manager) Rebuild(cmds []*record.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := emptySnapshot()
	next.version = m.current.Load().version
	for _, cmd := range cmds {
		entry, freqs, err := analyzeCommand(cmd)
		if err != nil {
			return err
		}
		next.addDoc(cmd.Key(), entry, freqs)
	}
	return m.publish(next)
}

// Upsert indexes one record, replacing any prior version of the same
// document.
func (m *Manager) Upsert(cmd *record.Command) error {
	return m.UpsertBatch([]*record.Command{cmd})
}

// UpsertBatch indexes records under one writer lock and one segment write.
// Either the whole batch becomes visible or none of it does.
func (m *Manager) UpsertBatch(cmds []*record.Command) error {
	analyzed := make([]struct {
		key   string
		entry postings.DocEntry
		freqs map[string][postings.FieldCount]int
	}, 0, len(cmds))
	for _, cmd := range cmds {
		entry, freqs, err := analyzeCommand(cmd)
		if err != nil {
			return err
		}
		analyzed = append(analyzed, struct {
			key   string
			entry postings.DocEntry
			freqs map[string][postings.FieldCount]int
		}{cmd.Key(), entry, freqs})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.current.Load().clone()
	for _, a := range analyzed {
		next.removeDoc(a.key)
		next.addDoc(a.key, a.entry, a.freqs)
	}
	return m.publish(next)
}

// Delete removes a document from the index. Deleting an unknown document
// returns ErrNotFound.
func (m *Manager) Delete(name, lang string) error {
	key := record.Key(name, lang)
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.current.Load()
	if _, ok := snap.docs[key]; !ok {
		return apperr.ErrNotFound
	}
	next := snap.clone()
	next.removeDoc(key)
	return m.publish(next)
}

// publish persists next and swaps it in. The manifest is only rewritten
// after the segment file is durable, so a crash between the two leaves the
// previous snapshot intact and recoverable.
func (m *Manager) publish(next *Snapshot) error {
	next.version++
	next.builtAt = time.Now()
	segName, err := m.writer.Write(next.entries(), next.docs)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrIndexIO, err)
	}
	manifest := &segment.Manifest{
		Version:     next.version,
		Segment:     segName,
		DocCount:    next.DocCount(),
		TotalTokens: next.totalTokens,
		BuiltAt:     next.builtAt,
	}
	if err := segment.WriteManifest(m.dir, manifest); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrIndexIO, err)
	}
	m.current.Store(next)
	segment.RemoveStaleSegments(m.dir, segName)
	m.logger.Debug("snapshot published",
		"version", next.version,
		"docs", next.DocCount(),
		"terms", next.TermCount())
	return nil
}

func snapshotFrom(entries []postings.TermEntry, docs map[string]postings.DocEntry, manifest *segment.Manifest) *Snapshot {
	snap := emptySnapshot()
	snap.version = manifest.Version
	snap.builtAt = manifest.BuiltAt
	snap.docs = docs
	for _, e := range entries {
		snap.terms[e.Term] = e.Postings
		for _, p := range e.Postings {
			snap.docTerms[p.DocID] = append(snap.docTerms[p.DocID], e.Term)
		}
	}
	for _, d := range docs {
		snap.totalTokens += d.Length
	}
	return snap
}

// analyzeCommand tokenises a record's fields into per-term, per-field
// frequencies plus the document statistics the ranker needs.
func analyzeCommand(cmd *record.Command) (postings.DocEntry, map[string][postings.FieldCount]int, error) {
	fields := [postings.FieldCount]string{
		postings.FieldName:        cmd.Name,
		postings.FieldDescription: descriptionText(cmd),
		postings.FieldContent:     contentText(cmd),
	}
	freqs := make(map[string][postings.FieldCount]int)
	entry := postings.DocEntry{Name: cmd.Name, Lang: cmd.Lang}
	for field, text := range fields {
		terms, err := tokenizer.Terms(text)
		if err != nil {
			return postings.DocEntry{}, nil, fmt.Errorf("%w: field %d of %s", err, field, cmd.Key())
		}
		entry.FieldLens[field] = len(terms)
		entry.Length += len(terms)
		for _, term := range terms {
			tf := freqs[term]
			tf[field]++
			freqs[term] = tf
		}
	}
	return entry, freqs, nil
}

func descriptionText(cmd *record.Command) string {
	var b strings.Builder
	b.WriteString(cmd.Description)
	for _, ex := range cmd.Examples {
		b.WriteByte('\n')
		b.WriteString(ex.Description)
	}
	return b.String()
}

func contentText(cmd *record.Command) string {
	var b strings.Builder
	for _, ex := range cmd.Examples {
		b.WriteString(ex.Code)
		b.WriteByte('\n')
	}
	b.WriteString(cmd.Content)
	return b.String()
}
