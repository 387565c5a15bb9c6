package search

import (
	"math"
	"sort"

	"github.com/mankihq/manki/internal/index/postings"
)

const (
	k1 = 1.2
	b  = 0.75
)

// ScoredDoc is one ranked document.
type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// RankParams carries the corpus statistics and field boosts the scorer
// needs.
type RankParams struct {
	TotalDocs    int
	AvgDocLength float64
	Boosts       [postings.FieldCount]float64
}

// Rank scores the union of all posting lists with a BM25-style formula,
// weighting each field's term frequency by its boost. Scores are rounded to
// four decimals; ties break on document name, then doc ID, so results are
// deterministic across runs.
func Rank(postingsPerTerm map[string]postings.PostingList, params RankParams, docs map[string]postings.DocEntry) []ScoredDoc {
	scores := make(map[string]float64)
	for _, pl := range postingsPerTerm {
		idf := computeIDF(params.TotalDocs, len(pl))
		for _, p := range pl {
			doc := docs[p.DocID]
			var fieldScore float64
			for field, tf := range p.TF {
				if tf == 0 {
					continue
				}
				fieldScore += params.Boosts[field] * computeTFNorm(
					float64(tf),
					float64(doc.Length),
					params.AvgDocLength,
				)
			}
			scores[p.DocID] += idf * fieldScore
		}
	}
	result := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		result = append(result, ScoredDoc{
			DocID: docID,
			Score: math.Round(score*10000) / 10000,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		ni, nj := docs[result[i].DocID].Name, docs[result[j].DocID].Name
		if ni != nj {
			return ni < nj
		}
		return result[i].DocID < result[j].DocID
	})
	return result
}

func computeIDF(totalDocs, docFreq int) float64 {
	numerator := float64(totalDocs) - float64(docFreq)
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

func computeTFNorm(termFreq, docLength, avgDocLength float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	return (termFreq * (k1 + 1)) / denominator
}
