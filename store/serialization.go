package store

import (
	"fmt"

	"github.com/poiesic/resolvit/core"
)

// MarshalRecord encodes a canonical record to its MUS representation.
func MarshalRecord(record *core.CanonicalRecord) []byte {
	bs := make([]byte, core.RecordMUS.Size(*record))
	core.RecordMUS.Marshal(*record, bs)
	return bs
}

// UnmarshalRecord decodes a canonical record from its MUS representation.
func UnmarshalRecord(bs []byte) (*core.CanonicalRecord, error) {
	record, _, err := core.RecordMUS.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalVector encodes an embedding vector to its MUS representation.
func MarshalVector(vector []float32) []byte {
	bs := make([]byte, core.VectorMUS.Size(vector))
	core.VectorMUS.Marshal(vector, bs)
	return bs
}

// UnmarshalVector decodes an embedding vector from its MUS representation.
func UnmarshalVector(bs []byte) ([]float32, error) {
	vector, _, err := core.VectorMUS.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return vector, nil
}

// MarshalID encodes a record ID to its MUS representation.
func MarshalID(id core.ID) []byte {
	bs := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, bs)
	return bs
}

// UnmarshalID decodes a record ID from its MUS representation.
func UnmarshalID(bs []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(bs)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}
