// Package index maintains the in-memory inverted index over command records
// and its on-disk segment representation. Readers always see a complete,
// immutable Snapshot; a single writer builds the next snapshot with
// copy-on-write map updates, persists it, then publishes it atomically.
package index

import (
	"sort"
	"time"

	"github.com/mankihq/manki/internal/index/postings"
)

// Snapshot is one immutable version of the index. All methods are safe for
// concurrent use; nothing reachable from a Snapshot is ever mutated after
// publication.
type Snapshot struct {
	terms       map[string]postings.PostingList
	docs        map[string]postings.DocEntry
	docTerms    map[string][]string
	totalTokens int
	version     uint64
	builtAt     time.Time
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		terms:    make(map[string]postings.PostingList),
		docs:     make(map[string]postings.DocEntry),
		docTerms: make(map[string][]string),
		builtAt:  time.Now(),
	}
}

// Postings returns the posting list for term, or nil. The returned slice
// must not be modified.
func (s *Snapshot) Postings(term string) postings.PostingList {
	return s.terms[term]
}

// Doc returns the document entry for docID.
func (s *Snapshot) Doc(docID string) (postings.DocEntry, bool) {
	d, ok := s.docs[docID]
	return d, ok
}

// Docs returns the document table. The returned map must not be modified.
func (s *Snapshot) Docs() map[string]postings.DocEntry {
	return s.docs
}

// DocCount returns the number of indexed documents.
func (s *Snapshot) DocCount() int {
	return len(s.docs)
}

// TermCount returns the number of distinct terms.
func (s *Snapshot) TermCount() int {
	return len(s.terms)
}

// AvgDocLen returns the mean token count per document, or 0 for an empty
// index.
func (s *Snapshot) AvgDocLen() float64 {
	if len(s.docs) == 0 {
		return 0
	}
	return float64(s.totalTokens) / float64(len(s.docs))
}

// Version returns the monotonically increasing snapshot version.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// BuiltAt returns when this snapshot was published.
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

// TotalTokens returns the token count summed over all documents.
func (s *Snapshot) TotalTokens() int {
	return s.totalTokens
}

// entries returns the term entries sorted by term, the form the segment
// writer wants.
func (s *Snapshot) entries() []postings.TermEntry {
	out := make([]postings.TermEntry, 0, len(s.terms))
	for term, pl := range s.terms {
		out = append(out, postings.TermEntry{Term: term, Postings: pl})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Term < out[j].Term
	})
	return out
}

// clone makes a shallow copy: new map headers sharing the current posting
// slices. Mutators must replace, never modify, any shared slice.
func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		terms:       make(map[string]postings.PostingList, len(s.terms)),
		docs:        make(map[string]postings.DocEntry, len(s.docs)+1),
		docTerms:    make(map[string][]string, len(s.docTerms)+1),
		totalTokens: s.totalTokens,
		version:     s.version,
	}
	for t, pl := range s.terms {
		next.terms[t] = pl
	}
	for id, d := range s.docs {
		next.docs[id] = d
	}
	for id, terms := range s.docTerms {
		next.docTerms[id] = terms
	}
	return next
}

// removeDoc strips docID from every posting list it appears in. Affected
// lists are re-sliced; untouched lists stay shared with the parent snapshot.
func (s *Snapshot) removeDoc(docID string) {
	terms, ok := s.docTerms[docID]
	if !ok {
		return
	}
	for _, term := range terms {
		old := s.terms[term]
		pl := make(postings.PostingList, 0, len(old)-1)
		for _, p := range old {
			if p.DocID != docID {
				pl = append(pl, p)
			}
		}
		if len(pl) == 0 {
			delete(s.terms, term)
		} else {
			s.terms[term] = pl
		}
	}
	doc := s.docs[docID]
	s.totalTokens -= doc.Length
	delete(s.docs, docID)
	delete(s.docTerms, docID)
}

// addDoc inserts the document's postings, keeping each list ordered by
// DocID.
func (s *Snapshot) addDoc(docID string, entry postings.DocEntry, freqs map[string][postings.FieldCount]int) {
	terms := make([]string, 0, len(freqs))
	for term, tf := range freqs {
		terms = append(terms, term)
		old := s.terms[term]
		pl := make(postings.PostingList, 0, len(old)+1)
		inserted := false
		p := postings.Posting{DocID: docID, TF: tf}
		for _, existing := range old {
			if !inserted && existing.DocID > docID {
				pl = append(pl, p)
				inserted = true
			}
			pl = append(pl, existing)
		}
		if !inserted {
			pl = append(pl, p)
		}
		s.terms[term] = pl
	}
	sort.Strings(terms)
	s.docs[docID] = entry
	s.docTerms[docID] = terms
	s.totalTokens += entry.Length
}
