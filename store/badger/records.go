// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/store"
)

// RecordStore persists canonical records in BadgerDB and serves as a
// snapshot Source for the refresher.
type RecordStore struct {
	backend *Backend
}

var _ store.Source = (*RecordStore)(nil)

// NewRecordStore creates a record store over the backend.
func NewRecordStore(backend *Backend) *RecordStore {
	return &RecordStore{backend: backend}
}

// AddRecords stores one or more canonical records. Records without an ID
// get a content-derived one from the normalized name. A record whose ID
// already exists is overwritten; a different record claiming an occupied
// normalized name is rejected with ErrDuplicateKey.
func (r *RecordStore) AddRecords(ctx context.Context, records ...*core.CanonicalRecord) ([]*core.CanonicalRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateRecord(record); err != nil {
				return err
			}
			if record.Id == 0 {
				record.Id = core.IDFromContent(record.NormalizedName)
			}

			nameKey := makeNameKey(record.NormalizedName)
			if item, err := tx.Get(nameKey); err == nil {
				var owner core.ID
				err := item.Value(func(val []byte) error {
					var uerr error
					owner, uerr = store.UnmarshalID(val)
					return uerr
				})
				if err != nil {
					return err
				}
				if owner != record.Id {
					return fmt.Errorf("%w: normalized name %q already held by record %d",
						store.ErrDuplicateKey, record.NormalizedName, owner)
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			if err := tx.Set(makeRecordKey(record.Id), store.MarshalRecord(record)); err != nil {
				return err
			}
			if err := tx.Set(nameKey, store.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// GetRecord retrieves a single record by ID.
// Returns ErrNotFound if the record doesn't exist.
func (r *RecordStore) GetRecord(ctx context.Context, id core.ID) (*core.CanonicalRecord, error) {
	var record *core.CanonicalRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRecordKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: record %d", store.ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var uerr error
			record, uerr = store.UnmarshalRecord(val)
			return uerr
		})
	}, false)

	return record, err
}

// GetByNormalizedName resolves a record through the name index.
// Returns ErrNotFound if no record holds the name.
func (r *RecordStore) GetByNormalizedName(ctx context.Context, normalizedName string) (*core.CanonicalRecord, error) {
	var id core.ID

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeNameKey(normalizedName))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: name %q", store.ErrNotFound, normalizedName)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var uerr error
			id, uerr = store.UnmarshalID(val)
			return uerr
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return r.GetRecord(ctx, id)
}

// DeleteRecords removes records and their name-index entries by ID.
// Returns ErrNotFound if any record doesn't exist.
func (r *RecordStore) DeleteRecords(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRecordKey(id)

			item, err := tx.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: record %d", store.ErrNotFound, id)
			}
			if err != nil {
				return err
			}

			var record *core.CanonicalRecord
			if err := item.Value(func(val []byte) error {
				var uerr error
				record, uerr = store.UnmarshalRecord(val)
				return uerr
			}); err != nil {
				return err
			}

			if err := tx.Delete(makeNameKey(record.NormalizedName)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// FetchAll returns every stored record. Implements store.Source: the scan
// runs in one transaction, so the set is internally consistent.
func (r *RecordStore) FetchAll(ctx context.Context) ([]*core.CanonicalRecord, error) {
	if r.backend.IsClosed() {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, store.ErrStorageClosed)
	}

	var records []*core.CanonicalRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				record, uerr := store.UnmarshalRecord(val)
				if uerr != nil {
					return uerr
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	}

	return records, nil
}
