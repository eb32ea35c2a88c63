package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical content
// always maps to the same identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CanonicalRecord is an authoritative entity entry that queries are matched
// against. Records are immutable once loaded into an index snapshot; a
// refresh replaces the whole set, it never mutates records in place.
type CanonicalRecord struct {
	Id             ID
	DisplayName    string
	NormalizedName string
	Vector         []float32          // Embedding vector (populated by the refresher)
	Metadata       map[string]float64 // Numeric features consumed by the ranker
}

// Query is the per-request view of an incoming match request.
type Query struct {
	RequestId      string
	RawText        string
	NormalizedText string
	Vector         []float32 // Embedding of NormalizedText (populated during matching)
}

// Candidate is a scored shortlist entry. Derived per query, never persisted.
type Candidate struct {
	RecordId       ID
	DisplayName    string
	FuzzyScore     float64 // Lexical similarity in [0,1]
	EmbeddingScore float64 // Cosine similarity in [-1,1]
	FusedScore     float64 // Model confidence in [0,1]
}

// ResolvedVia identifies how a match result was produced.
type ResolvedVia int

const (
	// ResolvedViaCache means the result was served from the result cache.
	ResolvedViaCache ResolvedVia = iota + 1
	// ResolvedViaDirect means the ranker was confident without escalation.
	ResolvedViaDirect
	// ResolvedViaFallback means the disambiguation oracle was consulted.
	ResolvedViaFallback
)

// String returns the wire name of the ResolvedVia value.
func (v ResolvedVia) String() string {
	switch v {
	case ResolvedViaCache:
		return "cache"
	case ResolvedViaDirect:
		return "direct"
	case ResolvedViaFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// MatchResult is the finalized outcome of resolving one query.
// Once written to the result cache it is read-shared and must not be mutated.
type MatchResult struct {
	QueryText       string      // Normalized query text (the cache key)
	Candidates      []Candidate // Ranked best-first: fused score desc, record ID asc
	Confidence      float64     // Fused score of the top candidate, 0 if none
	Resolved        ResolvedVia
	LowConfidence   bool   // Set when the fallback could not raise confidence above the threshold
	TimedOut        bool   // Set when the query budget expired before ranking finished
	SnapshotVersion string // Version of the index snapshot that produced the candidates
	Timestamp       time.Time
}

// NoMatch reports whether the result carries no usable candidate.
func (r *MatchResult) NoMatch() bool {
	return len(r.Candidates) == 0
}

// Top returns the best candidate, or nil for a no-match result.
func (r *MatchResult) Top() *Candidate {
	if len(r.Candidates) == 0 {
		return nil
	}
	return &r.Candidates[0]
}
