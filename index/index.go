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

package index

import (
	"log/slog"
	"sync/atomic"
)

// Index holds the current snapshot behind an atomic pointer. Readers load
// the pointer once per query and keep using that snapshot even if a swap
// happens mid-query; the old snapshot stays valid until its last reader
// drops it.
type Index struct {
	current atomic.Pointer[Snapshot]
	logger  *slog.Logger
}

// New creates an empty index with no snapshot installed.
func New() *Index {
	return &Index{
		logger: slog.Default().With("component", "index"),
	}
}

// Load returns the current snapshot, or nil if none has been installed yet.
func (ix *Index) Load() *Snapshot {
	return ix.current.Load()
}

// Swap atomically installs a new snapshot and returns the previous one
// (nil on first install).
func (ix *Index) Swap(s *Snapshot) *Snapshot {
	prev := ix.current.Swap(s)

	attrs := []any{"version", s.Version(), "records", s.Len(), "dim", s.Dim()}
	if prev != nil {
		attrs = append(attrs, "previous", prev.Version())
	}
	ix.logger.Info("snapshot installed", attrs...)

	return prev
}
