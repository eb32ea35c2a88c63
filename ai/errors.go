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


package ai

import "errors"

var (
	// ErrEncoding indicates text that cannot be encoded: empty after
	// normalization or otherwise malformed. This is a caller error and is
	// never retried.
	ErrEncoding = errors.New("text cannot be encoded")

	// ErrOracleTimeout indicates the disambiguation oracle did not answer
	// within its deadline.
	ErrOracleTimeout = errors.New("oracle timed out")

	// ErrOracleFailed indicates the oracle request failed or returned an
	// unparseable response.
	ErrOracleFailed = errors.New("oracle request failed")

	// ErrNoCandidates indicates a disambiguation request with an empty
	// candidate list.
	ErrNoCandidates = errors.New("no candidates to disambiguate")
)
