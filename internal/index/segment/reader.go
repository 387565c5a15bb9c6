package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"sort"

	"github.com/mankihq/manki/internal/index/postings"
)

// Reader provides access to a single segment file.
type Reader struct {
	file   *os.File
	header Header
	dict   []DictEntry
	docs   map[string]postings.DocEntry
}

// OpenReader opens a segment file, validates its magic, version, and
// checksums, and loads the dictionary and document table.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening segment file: %w", err)
	}
	headerBytes := make([]byte, HeaderSize)
	if _, err := f.ReadAt(headerBytes, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading segment header: %w", err)
	}
	magic := binary.LittleEndian.Uint32(headerBytes[0:4])
	if magic != MagicBytes {
		f.Close()
		return nil, fmt.Errorf("invalid segment file: bad magic bytes %x", magic)
	}
	version := binary.LittleEndian.Uint32(headerBytes[4:8])
	if version != FormatVersion {
		f.Close()
		return nil, fmt.Errorf("unsupported segment version %d", version)
	}
	header := Header{
		Magic:      magic,
		Version:    version,
		TermCount:  binary.LittleEndian.Uint32(headerBytes[8:12]),
		DocCount:   binary.LittleEndian.Uint32(headerBytes[12:16]),
		PostOffset: int64(binary.LittleEndian.Uint64(headerBytes[16:24])),
		PostSize:   int64(binary.LittleEndian.Uint64(headerBytes[24:32])),
		DictOffset: int64(binary.LittleEndian.Uint64(headerBytes[32:40])),
		DictSize:   int64(binary.LittleEndian.Uint64(headerBytes[40:48])),
		DocsOffset: int64(binary.LittleEndian.Uint64(headerBytes[48:56])),
		DocsSize:   int64(binary.LittleEndian.Uint64(headerBytes[56:64])),
	}

	footer := make([]byte, FooterSize)
	if _, err := f.ReadAt(footer, header.DocsOffset+header.DocsSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading segment footer: %w", err)
	}

	dictBytes := make([]byte, header.DictSize)
	if _, err := f.ReadAt(dictBytes, header.DictOffset); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	if sum := crc32.ChecksumIEEE(dictBytes); sum != binary.LittleEndian.Uint32(footer[0:4]) {
		f.Close()
		return nil, fmt.Errorf("dictionary checksum mismatch in %s", path)
	}
	var dict []DictEntry
	if err := json.Unmarshal(dictBytes, &dict); err != nil {
		f.Close()
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}

	docsBytes := make([]byte, header.DocsSize)
	if _, err := f.ReadAt(docsBytes, header.DocsOffset); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading document table: %w", err)
	}
	if sum := crc32.ChecksumIEEE(docsBytes); sum != binary.LittleEndian.Uint32(footer[4:8]) {
		f.Close()
		return nil, fmt.Errorf("document table checksum mismatch in %s", path)
	}
	docs := make(map[string]postings.DocEntry)
	if err := json.Unmarshal(docsBytes, &docs); err != nil {
		f.Close()
		return nil, fmt.Errorf("parsing document table: %w", err)
	}

	return &Reader{
		file:   f,
		header: header,
		dict:   dict,
		docs:   docs,
	}, nil
}

// Search returns the posting list for term, or nil if the term is absent.
func (r *Reader) Search(term string) (postings.PostingList, error) {
	idx := sort.Search(len(r.dict), func(i int) bool {
		return r.dict[i].Term >= term
	})
	if idx >= len(r.dict) || r.dict[idx].Term != term {
		return nil, nil
	}
	return r.readPostings(r.dict[idx])
}

// LoadAll materialises every term entry in the segment, in dictionary order.
func (r *Reader) LoadAll() ([]postings.TermEntry, error) {
	entries := make([]postings.TermEntry, 0, len(r.dict))
	for _, de := range r.dict {
		pl, err := r.readPostings(de)
		if err != nil {
			return nil, err
		}
		entries = append(entries, postings.TermEntry{Term: de.Term, Postings: pl})
	}
	return entries, nil
}

func (r *Reader) readPostings(de DictEntry) (postings.PostingList, error) {
	buf := make([]byte, de.PostLen)
	if _, err := r.file.ReadAt(buf, r.header.PostOffset+de.PostOffset); err != nil {
		return nil, fmt.Errorf("reading postings for term %q: %w", de.Term, err)
	}
	var pl postings.PostingList
	if err := json.Unmarshal(buf, &pl); err != nil {
		return nil, fmt.Errorf("parsing postings for term %q: %w", de.Term, err)
	}
	return pl, nil
}

// Docs returns the segment's document table.
func (r *Reader) Docs() map[string]postings.DocEntry {
	return r.docs
}

// Terms returns the number of distinct terms in the segment.
func (r *Reader) Terms() int {
	return len(r.dict)
}

// DocCount returns the number of documents in the segment.
func (r *Reader) DocCount() uint32 {
	return r.header.DocCount
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
