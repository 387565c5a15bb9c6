// Package postings defines the on-disk and in-memory posting structures
// shared by the index snapshot and the segment codec.
package postings

// Indexed fields, in boost order. Term frequencies are tracked per field so
// the ranker can weight a name hit above a content hit.
const (
	FieldName = iota
	FieldDescription
	FieldContent
	FieldCount
)

// Posting records how often a term occurs in each field of one document.
type Posting struct {
	DocID string          `json:"d"`
	TF    [FieldCount]int `json:"f"`
}

// Total returns the term's frequency summed across fields.
func (p Posting) Total() int {
	n := 0
	for _, f := range p.TF {
		n += f
	}
	return n
}

// PostingList is a posting slice ordered by DocID.
type PostingList []Posting

// TermEntry pairs a term with its full posting list, the unit the segment
// writer serialises.
type TermEntry struct {
	Term     string
	Postings PostingList
}

// DocEntry is the per-document statistics kept alongside the postings.
type DocEntry struct {
	Name      string          `json:"name"`
	Lang      string          `json:"lang"`
	FieldLens [FieldCount]int `json:"lens"`
	Length    int             `json:"len"`
}
