// Package badger implements the durable entity store on BadgerDB.
//
// Two stores share one backend: RecordStore holds canonical records plus a
// normalized-name index, and VectorCache holds embedding vectors keyed by a
// content hash of (model, normalized text). Values are MUS-encoded.
package badger
