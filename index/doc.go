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


// Package index holds the in-memory candidate index over canonical records.
//
// A Snapshot is an immutable view of one complete record set: once built it
// is never mutated, so all retrieval methods are safe for unlimited
// concurrent readers without locks. The Index wraps an atomically-swappable
// reference to the current snapshot; a refresh builds a fresh Snapshot and
// swaps it in, while requests already holding the old snapshot finish on it
// and the garbage collector retires it once the last reader drops it.
//
// Retrieval produces a blended shortlist: the top-k records by embedding
// cosine similarity unioned with the top-k by fuzzy lexical score. The union
// keeps exact lexical matches that embeddings under-rank, and keeps fuzzy
// scans cheap by never being the only retrieval path.
package index
