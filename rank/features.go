package rank

import (
	"github.com/poiesic/resolvit/index"
)

// Extractor builds the feature vector for one shortlisted record.
// Layout: [fuzzy score, embedding cosine, metadata values in MetadataKeys
// order]. MetadataKeys must stay fixed for the lifetime of a model: the
// trained ensemble is bound to the feature positions it saw at training
// time. Records missing a key contribute 0 at that position.
type Extractor struct {
	MetadataKeys []string
}

// Features converts a hit to the model's input vector.
func (e *Extractor) Features(hit index.Hit) []float64 {
	features := make([]float64, 0, 2+len(e.MetadataKeys))
	features = append(features, hit.FuzzyScore, hit.EmbeddingScore)
	for _, key := range e.MetadataKeys {
		features = append(features, hit.Record.Metadata[key])
	}
	return features
}
