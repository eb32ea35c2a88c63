package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "john smith"},
		{name: "empty string", content: ""},
		{name: "long content", content: "a much longer canonical name that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("john smith")
	id2 := IDFromContent("jane smith")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestResolvedVia_String(t *testing.T) {
	tests := []struct {
		name string
		via  ResolvedVia
		want string
	}{
		{name: "cache", via: ResolvedViaCache, want: "cache"},
		{name: "direct", via: ResolvedViaDirect, want: "direct"},
		{name: "fallback", via: ResolvedViaFallback, want: "fallback"},
		{name: "zero value", via: ResolvedVia(0), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.via.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchResult_NoMatch(t *testing.T) {
	empty := &MatchResult{QueryText: "xyzzy"}
	if !empty.NoMatch() {
		t.Errorf("NoMatch() = false for empty candidate list")
	}
	if empty.Top() != nil {
		t.Errorf("Top() != nil for empty candidate list")
	}

	full := &MatchResult{
		QueryText:  "john smith",
		Candidates: []Candidate{{RecordId: 1, FusedScore: 0.9}},
	}
	if full.NoMatch() {
		t.Errorf("NoMatch() = true with candidates present")
	}
	if top := full.Top(); top == nil || top.RecordId != 1 {
		t.Errorf("Top() = %v, want candidate 1", top)
	}
}

func TestRecordMUS_RoundTrip(t *testing.T) {
	record := CanonicalRecord{
		Id:             IDFromContent("john smith"),
		DisplayName:    "John Smith",
		NormalizedName: "john smith",
		Vector:         []float32{0.25, -0.5, 0.75},
		Metadata:       map[string]float64{"popularity": 0.8, "aliases": 2},
	}

	bs := make([]byte, RecordMUS.Size(record))
	n := RecordMUS.Marshal(record, bs)
	if n != len(bs) {
		t.Fatalf("Marshal() wrote %d bytes, Size() reported %d", n, len(bs))
	}

	got, _, err := RecordMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Id != record.Id || got.DisplayName != record.DisplayName || got.NormalizedName != record.NormalizedName {
		t.Errorf("Unmarshal() = %+v, want %+v", got, record)
	}
	if len(got.Vector) != len(record.Vector) {
		t.Fatalf("Unmarshal() vector length = %d, want %d", len(got.Vector), len(record.Vector))
	}
	for i := range record.Vector {
		if got.Vector[i] != record.Vector[i] {
			t.Errorf("vector[%d] = %f, want %f", i, got.Vector[i], record.Vector[i])
		}
	}
	if got.Metadata["popularity"] != 0.8 || got.Metadata["aliases"] != 2 {
		t.Errorf("metadata = %v, want %v", got.Metadata, record.Metadata)
	}
}

func TestRecordMUS_EmptyOptionalFields(t *testing.T) {
	record := CanonicalRecord{
		Id:             7,
		DisplayName:    "Ada Lovelace",
		NormalizedName: "ada lovelace",
	}

	bs := make([]byte, RecordMUS.Size(record))
	RecordMUS.Marshal(record, bs)

	got, _, err := RecordMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(got.Vector) != 0 {
		t.Errorf("vector = %v, want empty", got.Vector)
	}
	if len(got.Metadata) != 0 {
		t.Errorf("metadata = %v, want empty", got.Metadata)
	}
}
