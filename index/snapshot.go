package index

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/fuzzy"
)

// Hit is a shortlisted record with the retrieval scores computed so far.
type Hit struct {
	Record         *core.CanonicalRecord
	FuzzyScore     float64 // Lexical similarity in [0,1]
	EmbeddingScore float64 // Cosine similarity in [-1,1]
}

// Snapshot is an immutable index over one complete set of canonical records.
// Build with NewSnapshot; never mutate a snapshot after construction.
type Snapshot struct {
	version string
	builtAt time.Time
	records []*core.CanonicalRecord
	byID    map[core.ID]*core.CanonicalRecord
	dim     int
}

// NewSnapshot builds a snapshot from a complete record set.
// Records are validated, IDs must be unique, and all non-empty vectors must
// share one dimension. The input slice is copied; callers may reuse it.
func NewSnapshot(records []*core.CanonicalRecord) (*Snapshot, error) {
	s := &Snapshot{
		version: uuid.NewString(),
		builtAt: time.Now().UTC(),
		records: make([]*core.CanonicalRecord, 0, len(records)),
		byID:    make(map[core.ID]*core.CanonicalRecord, len(records)),
	}

	for _, record := range records {
		if err := core.ValidateRecord(record); err != nil {
			return nil, err
		}
		if _, exists := s.byID[record.Id]; exists {
			return nil, fmt.Errorf("%w: %d", core.ErrDuplicateRecordID, record.Id)
		}
		if len(record.Vector) > 0 {
			if s.dim == 0 {
				s.dim = len(record.Vector)
			} else if s.dim != len(record.Vector) {
				return nil, fmt.Errorf("%w: record %d has %d, snapshot has %d",
					core.ErrVectorDimensionMismatch, record.Id, len(record.Vector), s.dim)
			}
		}
		s.records = append(s.records, record)
		s.byID[record.Id] = record
	}

	return s, nil
}

// Version returns the unique identity of this snapshot.
func (s *Snapshot) Version() string { return s.version }

// BuiltAt returns when the snapshot was constructed.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int { return len(s.records) }

// Dim returns the embedding dimension, or 0 if no record carries a vector.
func (s *Snapshot) Dim() int { return s.dim }

// Record returns the record with the given ID, or nil.
func (s *Snapshot) Record(id core.ID) *core.CanonicalRecord {
	return s.byID[id]
}

// Records returns the snapshot's records. Callers must not mutate them.
func (s *Snapshot) Records() []*core.CanonicalRecord {
	return s.records
}

// TopFuzzy scans all records and returns the k best by fuzzy lexical score
// against the normalized query text, ordered score desc then ID asc.
func (s *Snapshot) TopFuzzy(normText string, k int) []Hit {
	if normText == "" || k <= 0 {
		return nil
	}

	hits := make([]Hit, 0, len(s.records))
	for _, record := range s.records {
		hits = append(hits, Hit{
			Record:     record,
			FuzzyScore: fuzzy.Score(normText, record.NormalizedName),
		})
	}

	slices.SortFunc(hits, func(a, b Hit) int {
		if a.FuzzyScore != b.FuzzyScore {
			if a.FuzzyScore > b.FuzzyScore {
				return -1
			}
			return 1
		}
		return compareIDs(a.Record.Id, b.Record.Id)
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// TopCosine scans all records and returns the k best by cosine similarity
// against the query vector, ordered score desc then ID asc. Records without
// vectors are skipped. Vectors are expected to be unit length, so the dot
// product is the cosine.
func (s *Snapshot) TopCosine(vector []float32, k int) []Hit {
	if len(vector) == 0 || k <= 0 {
		return nil
	}

	hits := make([]Hit, 0, len(s.records))
	for _, record := range s.records {
		if len(record.Vector) == 0 {
			continue
		}
		hits = append(hits, Hit{
			Record:         record,
			EmbeddingScore: dotProduct(vector, record.Vector),
		})
	}

	slices.SortFunc(hits, func(a, b Hit) int {
		if a.EmbeddingScore != b.EmbeddingScore {
			if a.EmbeddingScore > b.EmbeddingScore {
				return -1
			}
			return 1
		}
		return compareIDs(a.Record.Id, b.Record.Id)
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Merge unions the cosine and fuzzy shortlists, deduplicates by record ID,
// and caps the result at max entries. Lists are interleaved round-robin so
// neither retrieval path can starve the other out of a small cap. Scores
// missing from one list are filled in here, so every returned hit carries
// both a fuzzy and an embedding score.
func (s *Snapshot) Merge(cosine, fz []Hit, vector []float32, normText string, max int) []Hit {
	if max <= 0 {
		return nil
	}

	merged := make([]Hit, 0, max)
	seen := make(map[core.ID]bool, max)

	for i := 0; len(merged) < max && (i < len(cosine) || i < len(fz)); i++ {
		if i < len(cosine) {
			hit := cosine[i]
			if !seen[hit.Record.Id] {
				hit.FuzzyScore = fuzzy.Score(normText, hit.Record.NormalizedName)
				merged = append(merged, hit)
				seen[hit.Record.Id] = true
			}
		}
		if len(merged) >= max {
			break
		}
		if i < len(fz) {
			hit := fz[i]
			if !seen[hit.Record.Id] {
				if len(vector) > 0 && len(hit.Record.Vector) > 0 {
					hit.EmbeddingScore = dotProduct(vector, hit.Record.Vector)
				}
				merged = append(merged, hit)
				seen[hit.Record.Id] = true
			}
		}
	}

	return merged
}

// Shortlist retrieves the blended candidate shortlist for a query: the top-k
// records by cosine similarity unioned with the top-k by fuzzy score, deduped
// and capped at k. Equivalent to TopCosine + TopFuzzy + Merge; the match
// pipeline runs those pieces itself when it wants the scans concurrent.
func (s *Snapshot) Shortlist(vector []float32, normText string, k int) []Hit {
	return s.Merge(s.TopCosine(vector, k), s.TopFuzzy(normText, k), vector, normText, k)
}

// dotProduct computes the inner product of two vectors.
// Mismatched lengths score 0 rather than panicking.
func dotProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func compareIDs(a, b core.ID) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
