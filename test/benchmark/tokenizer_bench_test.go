package benchmark

import (
	"testing"

	"github.com/mankihq/manki/internal/tokenizer"
)

const latinText = "tar is an archiving utility that can create, extract, and list tar archives with optional gzip or bzip2 compression"

const mixedText = "tar 是一个归档工具，可以创建、提取和列出 tar 归档文件，支持 gzip 压缩"

// BenchmarkTokenizeLatin measures pure-Latin tokenization throughput.
func BenchmarkTokenizeLatin(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(latinText)))
	for i := 0; i < b.N; i++ {
		if _, err := tokenizer.Tokenize(latinText); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkTokenizeMixed measures mixed Chinese/Latin tokenization, which
// exercises script-run splitting and CJK segmentation.
func BenchmarkTokenizeMixed(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(mixedText)))
	for i := 0; i < b.N; i++ {
		if _, err := tokenizer.Tokenize(mixedText); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEscapeQuery measures query-literal escaping cost.
func BenchmarkEscapeQuery(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = tokenizer.EscapeQuery(`git log --pretty="%h %s" -- path/*.go`)
	}
}
