// Package segment reads and writes immutable index segment files. A segment
// holds the complete term dictionary, per-term posting lists, and the
// document table for one index snapshot. Files are written to a .tmp path and
// renamed into place so a crash never leaves a partial segment visible.
package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"time"

	"github.com/mankihq/manki/internal/index/postings"
)

// MagicBytes identifies a valid .mkx segment file.
const (
	MagicBytes    uint32 = 0x4D4B4958
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 32
)

// Header is the fixed-size header written at the start of every segment.
type Header struct {
	Magic      uint32
	Version    uint32
	TermCount  uint32
	DocCount   uint32
	PostOffset int64
	PostSize   int64
	DictOffset int64
	DictSize   int64
	DocsOffset int64
	DocsSize   int64
}

// DictEntry maps a term to its postings offset, length, and document
// frequency within the segment file.
type DictEntry struct {
	Term       string `json:"t"`
	PostOffset int64  `json:"o"`
	PostLen    int    `json:"l"`
	DocFreq    int    `json:"d"`
}

// Writer serialises snapshots into new .mkx segment files.
type Writer struct {
	dir string
}

// NewWriter creates a Writer that writes segments into dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write atomically creates a new segment file containing the given term
// entries (sorted by term) and document table. It returns the segment file
// name relative to the writer's directory.
func (w *Writer) Write(entries []postings.TermEntry, docs map[string]postings.DocEntry) (string, error) {
	name := fmt.Sprintf("seg_%d.mkx", time.Now().UnixNano())
	finalPath := filepath.Join(w.dir, name)
	tmpPath := finalPath + ".tmp"

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating segment directory: %w", err)
	}
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp segment file: %w", err)
	}
	defer f.Close()

	headerBytes := make([]byte, HeaderSize)
	if _, err := f.Write(headerBytes); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}

	postStart, _ := f.Seek(0, 1)
	dict := make([]DictEntry, 0, len(entries))
	for _, entry := range entries {
		offset, _ := f.Seek(0, 1)
		data, err := json.Marshal(entry.Postings)
		if err != nil {
			return "", fmt.Errorf("marshaling postings for term %q: %w", entry.Term, err)
		}
		if _, err := f.Write(data); err != nil {
			return "", fmt.Errorf("writing postings for term %q: %w", entry.Term, err)
		}
		dict = append(dict, DictEntry{
			Term:       entry.Term,
			PostOffset: offset - postStart,
			PostLen:    len(data),
			DocFreq:    len(entry.Postings),
		})
	}
	postEnd, _ := f.Seek(0, 1)

	dictData, err := json.Marshal(dict)
	if err != nil {
		return "", fmt.Errorf("marshaling dictionary: %w", err)
	}
	if _, err := f.Write(dictData); err != nil {
		return "", fmt.Errorf("writing dictionary: %w", err)
	}

	docsData, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("marshaling document table: %w", err)
	}
	if _, err := f.Write(docsData); err != nil {
		return "", fmt.Errorf("writing document table: %w", err)
	}

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(dictData))
	binary.LittleEndian.PutUint32(footer[4:8], crc32.ChecksumIEEE(docsData))
	binary.LittleEndian.PutUint32(footer[8:12], uint32(len(docs)))
	if _, err := f.Write(footer); err != nil {
		return "", fmt.Errorf("writing footer: %w", err)
	}

	binary.LittleEndian.PutUint32(headerBytes[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(headerBytes[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(headerBytes[8:12], uint32(len(entries)))
	binary.LittleEndian.PutUint32(headerBytes[12:16], uint32(len(docs)))
	binary.LittleEndian.PutUint64(headerBytes[16:24], uint64(postStart))
	binary.LittleEndian.PutUint64(headerBytes[24:32], uint64(postEnd-postStart))
	binary.LittleEndian.PutUint64(headerBytes[32:40], uint64(postEnd))
	binary.LittleEndian.PutUint64(headerBytes[40:48], uint64(len(dictData)))
	binary.LittleEndian.PutUint64(headerBytes[48:56], uint64(postEnd+int64(len(dictData))))
	binary.LittleEndian.PutUint64(headerBytes[56:64], uint64(len(docsData)))
	if _, err := f.WriteAt(headerBytes, 0); err != nil {
		return "", fmt.Errorf("updating header: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("syncing segment file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("renaming segment file: %w", err)
	}
	return name, nil
}
