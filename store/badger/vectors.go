package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/resolvit/store"
)

// VectorCache persists embedding vectors so a refresh only encodes records
// whose vector is missing for the current model.
type VectorCache struct {
	backend *Backend
}

var _ store.VectorCache = (*VectorCache)(nil)

// NewVectorCache creates a vector cache over the backend.
func NewVectorCache(backend *Backend) *VectorCache {
	return &VectorCache{backend: backend}
}

// GetVector returns the cached vector for the text under the model.
func (c *VectorCache) GetVector(ctx context.Context, model, normText string) ([]float32, bool, error) {
	var vector []float32

	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(model, normText))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var uerr error
			vector, uerr = store.UnmarshalVector(val)
			return uerr
		})
	}, false)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return vector, true, nil
}

// PutVector stores a vector for the text under the model.
func (c *VectorCache) PutVector(ctx context.Context, model, normText string, vector []float32) error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVectorKey(model, normText), store.MarshalVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
