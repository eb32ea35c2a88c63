package store

import (
	"context"

	"github.com/poiesic/resolvit/core"
)

// Source delivers the complete canonical record set. Implementations must
// be thread-safe and must return either a full, internally consistent set
// or an error wrapping ErrStoreUnavailable, never a partial set.
type Source interface {
	FetchAll(ctx context.Context) ([]*core.CanonicalRecord, error)
}

// VectorCache persists embedding vectors keyed by (model, normalized text),
// so a refresh only re-encodes records whose vector is missing or was
// produced by a different model.
type VectorCache interface {
	// GetVector returns the cached vector for the text under the model,
	// or ok=false if none is stored.
	GetVector(ctx context.Context, model, normText string) (vector []float32, ok bool, err error)

	// PutVector stores a vector for the text under the model, replacing
	// any previous entry.
	PutVector(ctx context.Context, model, normText string, vector []float32) error
}
