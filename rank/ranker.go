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

package rank

import (
	"slices"

	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/index"
)

// Ranker scores a shortlist and produces the ordered candidate list.
type Ranker struct {
	model     Model
	extractor Extractor
}

// NewRanker creates a ranker over the given model. metadataKeys selects
// which record metadata values join the feature vector, in order.
func NewRanker(model Model, metadataKeys []string) *Ranker {
	return &Ranker{
		model:     model,
		extractor: Extractor{MetadataKeys: metadataKeys},
	}
}

// Rank scores every hit and returns candidates sorted by fused score
// descending, record ID ascending on ties. The output is deterministic for
// identical input.
func (r *Ranker) Rank(hits []index.Hit) []core.Candidate {
	candidates := make([]core.Candidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, core.Candidate{
			RecordId:       hit.Record.Id,
			DisplayName:    hit.Record.DisplayName,
			FuzzyScore:     hit.FuzzyScore,
			EmbeddingScore: hit.EmbeddingScore,
			FusedScore:     r.model.Predict(r.extractor.Features(hit)),
		})
	}

	slices.SortFunc(candidates, func(a, b core.Candidate) int {
		if a.FusedScore != b.FusedScore {
			if a.FusedScore > b.FusedScore {
				return -1
			}
			return 1
		}
		if a.RecordId < b.RecordId {
			return -1
		}
		if a.RecordId > b.RecordId {
			return 1
		}
		return 0
	})

	return candidates
}

// Confident reports whether the top candidate clears the acceptance
// threshold.
func Confident(candidates []core.Candidate, threshold float64) bool {
	return len(candidates) > 0 && candidates[0].FusedScore >= threshold
}
