package search

import (
	"math"
	"testing"

	"github.com/mankihq/manki/internal/index/postings"
)

var testBoosts = [postings.FieldCount]float64{3.0, 2.0, 1.0}

func testParams(totalDocs int) RankParams {
	return RankParams{
		TotalDocs:    totalDocs,
		AvgDocLength: 10,
		Boosts:       testBoosts,
	}
}

func TestRankNameOutscoresDescription(t *testing.T) {
	docs := map[string]postings.DocEntry{
		"en:alpha": {Name: "alpha", Lang: "en", Length: 10},
		"en:beta":  {Name: "beta", Lang: "en", Length: 10},
	}
	perTerm := map[string]postings.PostingList{
		"alpha": {
			{DocID: "en:alpha", TF: [postings.FieldCount]int{1, 0, 0}},
			{DocID: "en:beta", TF: [postings.FieldCount]int{0, 1, 0}},
		},
	}
	ranked := Rank(perTerm, testParams(4), docs)
	if len(ranked) != 2 {
		t.Fatalf("got %d results, want 2", len(ranked))
	}
	if ranked[0].DocID != "en:alpha" {
		t.Errorf("name match ranked below description match: %v", ranked)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("scores not ordered: %v", ranked)
	}
}

func TestRankDescriptionOutscoresContent(t *testing.T) {
	docs := map[string]postings.DocEntry{
		"en:a": {Name: "a", Lang: "en", Length: 10},
		"en:b": {Name: "b", Lang: "en", Length: 10},
	}
	perTerm := map[string]postings.PostingList{
		"verbose": {
			{DocID: "en:a", TF: [postings.FieldCount]int{0, 0, 1}},
			{DocID: "en:b", TF: [postings.FieldCount]int{0, 1, 0}},
		},
	}
	ranked := Rank(perTerm, testParams(4), docs)
	if ranked[0].DocID != "en:b" {
		t.Errorf("description match ranked below content match: %v", ranked)
	}
}

func TestRankMultiTermAccumulates(t *testing.T) {
	docs := map[string]postings.DocEntry{
		"en:both": {Name: "both", Lang: "en", Length: 10},
		"en:one":  {Name: "one", Lang: "en", Length: 10},
	}
	perTerm := map[string]postings.PostingList{
		"copy": {
			{DocID: "en:both", TF: [postings.FieldCount]int{0, 1, 0}},
			{DocID: "en:one", TF: [postings.FieldCount]int{0, 1, 0}},
		},
		"remote": {
			{DocID: "en:both", TF: [postings.FieldCount]int{0, 1, 0}},
		},
	}
	ranked := Rank(perTerm, testParams(5), docs)
	if ranked[0].DocID != "en:both" {
		t.Errorf("doc matching two terms ranked below doc matching one: %v", ranked)
	}
}

func TestRankTieBreaksByName(t *testing.T) {
	docs := map[string]postings.DocEntry{
		"en:zip":   {Name: "zip", Lang: "en", Length: 10},
		"en:bzip2": {Name: "bzip2", Lang: "en", Length: 10},
	}
	perTerm := map[string]postings.PostingList{
		"compress": {
			{DocID: "en:bzip2", TF: [postings.FieldCount]int{0, 1, 0}},
			{DocID: "en:zip", TF: [postings.FieldCount]int{0, 1, 0}},
		},
	}
	ranked := Rank(perTerm, testParams(4), docs)
	if ranked[0].DocID != "en:bzip2" || ranked[1].DocID != "en:zip" {
		t.Errorf("equal scores not ordered by name: %v", ranked)
	}
	if ranked[0].Score != ranked[1].Score {
		t.Errorf("expected equal scores, got %v", ranked)
	}
}

func TestRankScoresRounded(t *testing.T) {
	docs := map[string]postings.DocEntry{
		"en:x": {Name: "x", Lang: "en", Length: 7},
	}
	perTerm := map[string]postings.PostingList{
		"term": {{DocID: "en:x", TF: [postings.FieldCount]int{1, 2, 3}}},
	}
	ranked := Rank(perTerm, testParams(9), docs)
	got := ranked[0].Score
	if got != math.Round(got*10000)/10000 {
		t.Errorf("score %v not rounded to 4 decimals", got)
	}
	if got <= 0 {
		t.Errorf("score = %v, want > 0", got)
	}
}

func TestRankEmptyInput(t *testing.T) {
	ranked := Rank(nil, testParams(10), nil)
	if len(ranked) != 0 {
		t.Errorf("expected no results, got %v", ranked)
	}
}
