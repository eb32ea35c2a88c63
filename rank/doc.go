// Package rank turns a retrieval shortlist into a ranked candidate list.
//
// Each shortlisted record is converted to a feature vector (lexical score,
// semantic score, optional metadata signals) and scored by a Model. Two
// models ship: GBDTModel runs a trained XGBoost/LightGBM ensemble via
// leaves, and WeightedModel is a deterministic hand-tuned blend used when
// no trained model is available. Ranking is fully deterministic: identical
// inputs always produce identical output, with ties broken by record ID.
package rank
