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
	"fmt"

	"github.com/dmitryikh/leaves"
)

// Model scores one feature vector. Implementations must be deterministic
// and safe for concurrent use.
type Model interface {
	// Predict returns a fused relevance score in [0,1] for the feature
	// vector produced by Extractor.Features.
	Predict(features []float64) float64
}

// WeightedModel is a hand-tuned linear blend of the lexical and semantic
// signals. Candidates strong on both signals get an agreement bonus. Scores
// are monotone in each feature: raising either signal never lowers the
// fused score.
type WeightedModel struct {
	FuzzyWeight    float64
	EmbedWeight    float64
	AgreementBonus float64
}

// NewWeightedModel returns the default blend: 0.6 lexical, 0.4 semantic,
// 1.2x bonus when both signals exceed 0.5.
func NewWeightedModel() *WeightedModel {
	return &WeightedModel{
		FuzzyWeight:    0.6,
		EmbedWeight:    0.4,
		AgreementBonus: 1.2,
	}
}

// Predict fuses the first two features (fuzzy score in [0,1], cosine in
// [-1,1]); metadata features are ignored by this model.
func (m *WeightedModel) Predict(features []float64) float64 {
	if len(features) < 2 {
		return 0
	}

	fz := clamp01(features[0])
	semantic := clamp01((features[1] + 1) / 2)

	score := m.FuzzyWeight*fz + m.EmbedWeight*semantic
	if fz > 0.5 && semantic > 0.5 {
		score *= m.AgreementBonus
	}
	return clamp01(score)
}

// GBDTModel scores features with a trained gradient-boosted tree ensemble.
type GBDTModel struct {
	ensemble *leaves.Ensemble
}

// NewGBDTModel loads an XGBoost model dump from disk. The ensemble is loaded
// with its output transformation, so logistic-objective models already
// predict in [0,1].
func NewGBDTModel(path string) (*GBDTModel, error) {
	ensemble, err := leaves.XGEnsembleFromFile(path, true)
	if err != nil {
		return nil, fmt.Errorf("loading ranking model %s: %w", path, err)
	}
	return &GBDTModel{ensemble: ensemble}, nil
}

// Predict runs the ensemble on the feature vector and clamps to [0,1].
func (m *GBDTModel) Predict(features []float64) float64 {
	return clamp01(m.ensemble.PredictSingle(features, 0))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
