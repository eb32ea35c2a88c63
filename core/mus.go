package core

import (
	"sort"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types persisted in the record store and the
// embedding vector cache. The durable schema is small and stable, so these
// are maintained by hand rather than generated.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

// VectorMUS serializes embedding vectors.
var VectorMUS = vectorMUS{}

// RecordMUS serializes CanonicalRecord values.
var RecordMUS = recordMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (id ID, n int, err error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) (size int) {
	return varint.Uint64.Size(uint64(id))
}

type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var m int
		v[i], m, err = raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

type recordMUS struct{}

func (recordMUS) Marshal(r CanonicalRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(r.Id, bs)
	n += ord.String.Marshal(r.DisplayName, bs[n:])
	n += ord.String.Marshal(r.NormalizedName, bs[n:])
	n += VectorMUS.Marshal(r.Vector, bs[n:])
	// Metadata keys are written in sorted order so encoding is deterministic.
	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	n += varint.Int.Marshal(len(keys), bs[n:])
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += raw.Float64.Marshal(r.Metadata[k], bs[n:])
	}
	return n
}

func (recordMUS) Unmarshal(bs []byte) (r CanonicalRecord, n int, err error) {
	var m int
	r.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return r, n, err
	}
	r.DisplayName, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return r, n, err
	}
	r.NormalizedName, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return r, n, err
	}
	r.Vector, m, err = VectorMUS.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return r, n, err
	}
	var count int
	count, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return r, n, err
	}
	if count > 0 {
		r.Metadata = make(map[string]float64, count)
		for i := 0; i < count; i++ {
			var k string
			var v float64
			k, m, err = ord.String.Unmarshal(bs[n:])
			n += m
			if err != nil {
				return r, n, err
			}
			v, m, err = raw.Float64.Unmarshal(bs[n:])
			n += m
			if err != nil {
				return r, n, err
			}
			r.Metadata[k] = v
		}
	}
	return r, n, nil
}

func (recordMUS) Size(r CanonicalRecord) (size int) {
	size = IDMUS.Size(r.Id)
	size += ord.String.Size(r.DisplayName)
	size += ord.String.Size(r.NormalizedName)
	size += VectorMUS.Size(r.Vector)
	size += varint.Int.Size(len(r.Metadata))
	for k, v := range r.Metadata {
		size += ord.String.Size(k)
		size += raw.Float64.Size(v)
	}
	return size
}
