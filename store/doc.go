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


// Package store defines the boundary to the canonical entity store.
//
// A Source hands back the complete, internally consistent record set used
// to build an index snapshot; it never serves partial sets. Two sources
// ship: a YAML file source for fixtures and small deployments, and a
// BadgerDB-backed store (package store/badger) for durable record sets with
// an embedding vector cache alongside.
//
// The engine treats the store as read-mostly: writes happen through seeding
// tools and out-of-band curation, reads happen wholesale at refresh time.
package store
