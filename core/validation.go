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

import "fmt"

// ValidateRecord validates a CanonicalRecord according to domain rules.
//
// Validation rules:
//   - DisplayName must not be empty
//   - NormalizedName must not be empty
//
// NOT validated (populated by the refresher):
//   - Vector (can be empty until the record is embedded)
//   - Metadata (optional)
func ValidateRecord(record *CanonicalRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.DisplayName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyDisplayName)
	}

	if record.NormalizedName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyNormalizedName)
	}

	return nil
}
