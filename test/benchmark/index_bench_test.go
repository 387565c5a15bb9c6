// Package benchmark contains Go benchmarks for the tokenizer, the inverted
// index, and the search pipeline, measuring throughput and allocation
// behaviour.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/mankihq/manki/internal/index"
	"github.com/mankihq/manki/internal/record"
)

func benchCommand(i int) *record.Command {
	return &record.Command{
		Name: fmt.Sprintf("tool%d", i), Lang: "en",
		Description: "archive and compress files with optional filters",
		Category:    "common", Platform: "common",
		Examples: []record.Example{
			{Description: "create an archive", Code: fmt.Sprintf("tool%d cf out.tar dir", i)},
			{Description: "extract an archive", Code: fmt.Sprintf("tool%d xf out.tar", i)},
		},
	}
}

// BenchmarkIndexUpsert measures per-record insert cost including the
// copy-on-write snapshot swap and the segment write.
func BenchmarkIndexUpsert(b *testing.B) {
	idx, err := index.Open(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := idx.Upsert(benchCommand(i)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkIndexUpsertBatch measures bulk insert throughput, one snapshot
// publish per batch of 100.
func BenchmarkIndexUpsertBatch(b *testing.B) {
	idx, err := index.Open(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	batch := make([]*record.Command, 100)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range batch {
			batch[j] = benchCommand(i*len(batch) + j)
		}
		if err := idx.UpsertBatch(batch); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSnapshotPostings measures single-term lookup latency over 10 000
// indexed records.
func BenchmarkSnapshotPostings(b *testing.B) {
	idx, err := index.Open(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	batch := make([]*record.Command, 0, 10000)
	for i := 0; i < 10000; i++ {
		batch = append(batch, benchCommand(i))
	}
	if err := idx.UpsertBatch(batch); err != nil {
		b.Fatal(err)
	}
	snap := idx.Current()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = snap.Postings("archive")
	}
}

// BenchmarkSnapshotPostingsParallel measures concurrent read throughput
// against one immutable snapshot.
func BenchmarkSnapshotPostingsParallel(b *testing.B) {
	idx, err := index.Open(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	batch := make([]*record.Command, 0, 10000)
	for i := 0; i < 10000; i++ {
		batch = append(batch, benchCommand(i))
	}
	if err := idx.UpsertBatch(batch); err != nil {
		b.Fatal(err)
	}
	snap := idx.Current()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = snap.Postings("compress")
		}
	})
}
