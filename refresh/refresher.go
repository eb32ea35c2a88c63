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

package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/cache"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/index"
	"github.com/poiesic/resolvit/store"
)

// Refresher rebuilds index snapshots from the entity store.
type Refresher struct {
	source         store.Source
	embedder       ai.Embedder
	idx            *index.Index
	results        *cache.Cache
	vectors        store.VectorCache
	model          string
	pool           *ants.Pool
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	progress       *ProgressTracker
	logger         *slog.Logger
}

// Option configures a Refresher.
type Option func(*Refresher) error

// WithVectorCache sets a durable vector cache consulted before encoding.
// model names the embedding model the cache entries belong to.
func WithVectorCache(vectors store.VectorCache, model string) Option {
	return func(r *Refresher) error {
		r.vectors = vectors
		r.model = model
		return nil
	}
}

// WithPoolSize sets the worker pool size for batch encoding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Refresher) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithBatchSize sets how many records are encoded per request. Default 32.
func WithBatchSize(size int) Option {
	return func(r *Refresher) error {
		if size < 1 {
			size = 1
		}
		r.batchSize = size
		return nil
	}
}

// WithRetry sets the retry policy for store and encoder calls.
// Defaults: 3 attempts, 500ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(r *Refresher) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		r.maxRetries = maxAttempts
		r.retryBaseDelay = baseDelay
		return nil
	}
}

// WithProgress attaches a progress tracker for encoding runs.
func WithProgress(progress *ProgressTracker) Option {
	return func(r *Refresher) error {
		r.progress = progress
		return nil
	}
}

// New creates a refresher feeding snapshots from source into idx, purging
// results after each swap.
func New(source store.Source, embedder ai.Embedder, idx *index.Index, results *cache.Cache, opts ...Option) (*Refresher, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &Refresher{
		source:         source,
		embedder:       embedder,
		idx:            idx,
		results:        results,
		pool:           pool,
		batchSize:      32,
		maxRetries:     3,
		retryBaseDelay: 500 * time.Millisecond,
		logger:         slog.Default().With("component", "refresh"),
	}

	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}

	return r, nil
}

// Refresh fetches the full record set, fills in missing vectors, and swaps
// a new snapshot into the index. On any error the current snapshot keeps
// serving and the result cache is left untouched.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()

	var records []*core.CanonicalRecord
	err := RetryWithBackoff(ctx, func() error {
		var ferr error
		records, ferr = r.source.FetchAll(ctx)
		return ferr
	}, r.maxRetries, r.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("fetching records: %w", err)
	}

	if err := r.populateVectors(ctx, records); err != nil {
		return fmt.Errorf("embedding records: %w", err)
	}

	snapshot, err := index.NewSnapshot(records)
	if err != nil {
		return fmt.Errorf("building snapshot: %w", err)
	}

	r.idx.Swap(snapshot)
	if r.results != nil {
		r.results.Purge()
	}

	r.logger.Info("refresh complete",
		"records", snapshot.Len(), "version", snapshot.Version(),
		"elapsed", time.Since(start))
	return nil
}

// Run refreshes immediately and then on every interval tick until the
// context is cancelled. A failed refresh is logged; the previous snapshot
// keeps serving until the next tick succeeds.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) error {
	if err := r.Refresh(ctx); err != nil {
		r.logger.Error("initial refresh failed", "err", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.logger.Error("refresh failed, serving previous snapshot", "err", err)
			}
		}
	}
}

// Release releases the worker pool. The refresher should not be used after
// calling Release.
func (r *Refresher) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// populateVectors assigns an embedding to every record that lacks one,
// consulting the vector cache first and batch-encoding the rest.
func (r *Refresher) populateVectors(ctx context.Context, records []*core.CanonicalRecord) error {
	var pending []*core.CanonicalRecord
	for _, record := range records {
		if len(record.Vector) > 0 {
			continue
		}
		if r.vectors != nil {
			vector, ok, err := r.vectors.GetVector(ctx, r.model, record.NormalizedName)
			if err != nil {
				return err
			}
			if ok {
				record.Vector = vector
				continue
			}
		}
		pending = append(pending, record)
	}

	if len(pending) == 0 {
		return nil
	}
	r.logger.Info("encoding records", "pending", len(pending), "total", len(records))

	if r.progress != nil {
		r.progress.SetTotal(len(pending))
		r.progress.Start()
		defer r.progress.Finish()
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(pending); start += r.batchSize {
		end := start + r.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			if err := r.encodeBatch(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			if r.progress != nil {
				r.progress.Increment(len(batch))
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	return firstErr
}

// encodeBatch embeds one batch of records, normalizes the vectors, and
// writes them through to the vector cache.
func (r *Refresher) encodeBatch(ctx context.Context, batch []*core.CanonicalRecord) error {
	texts := make([]string, len(batch))
	for i, record := range batch {
		texts[i] = record.NormalizedName
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var eerr error
		embeddings, eerr = r.embedder.EmbedTexts(ctx, texts)
		return eerr
	}, r.maxRetries, r.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("encoding after %d attempts: %w", r.maxRetries, err)
	}
	if len(embeddings) != len(batch) {
		return fmt.Errorf("%w: expected %d, got %d",
			ErrEmbeddingCountMismatch, len(batch), len(embeddings))
	}

	for i, record := range batch {
		record.Vector = NormalizeVector(embeddings[i])
		if r.vectors != nil {
			if err := r.vectors.PutVector(ctx, r.model, record.NormalizedName, record.Vector); err != nil {
				return err
			}
		}
	}
	return nil
}
