package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/normalize"
)

// FileSource reads canonical records from a YAML fixture file. Intended for
// small deployments, seeding, and tests; records are re-read on every
// FetchAll so edits show up at the next refresh.
type FileSource struct {
	path string
}

type fileRecord struct {
	Id          uint64             `yaml:"id"`
	DisplayName string             `yaml:"display_name"`
	Metadata    map[string]float64 `yaml:"metadata"`
}

type fileDocument struct {
	Records []fileRecord `yaml:"records"`
}

// NewFileSource creates a source over the YAML file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// FetchAll parses the file and returns the full record set. Display names
// are normalized here; records without an explicit id get a content-derived
// one from the normalized name.
func (s *FileSource) FetchAll(ctx context.Context) ([]*core.CanonicalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrStoreUnavailable, s.path, err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrStoreUnavailable, s.path, err)
	}

	records := make([]*core.CanonicalRecord, 0, len(doc.Records))
	for i, fr := range doc.Records {
		normalized := normalize.Normalize(fr.DisplayName)
		record := &core.CanonicalRecord{
			Id:             core.ID(fr.Id),
			DisplayName:    fr.DisplayName,
			NormalizedName: normalized,
			Metadata:       fr.Metadata,
		}
		if record.Id == 0 {
			record.Id = core.IDFromContent(normalized)
		}
		if err := core.ValidateRecord(record); err != nil {
			return nil, fmt.Errorf("%w: record %d in %s: %w", ErrStoreUnavailable, i, s.path, err)
		}
		records = append(records, record)
	}

	return records, nil
}
