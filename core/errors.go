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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a CanonicalRecord failed validation.
	ErrInvalidRecord = errors.New("invalid canonical record")

	// ErrEmptyDisplayName indicates the DisplayName field is empty.
	ErrEmptyDisplayName = errors.New("display name cannot be empty")

	// ErrEmptyNormalizedName indicates the NormalizedName field is empty.
	ErrEmptyNormalizedName = errors.New("normalized name cannot be empty")

	// ErrDuplicateRecordID indicates two records in one snapshot share an ID.
	ErrDuplicateRecordID = errors.New("duplicate record id")

	// ErrVectorDimensionMismatch indicates record vectors of differing lengths.
	ErrVectorDimensionMismatch = errors.New("vector dimension mismatch")
)
