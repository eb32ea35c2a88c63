// Package refresh rebuilds the candidate index from the entity store.
//
// A refresh fetches the complete record set, fills in embedding vectors
// (from the durable vector cache when available, otherwise by batch
// encoding on a bounded worker pool), builds an immutable index snapshot,
// swaps it in atomically, and purges the result cache. A failed refresh
// leaves the previous snapshot serving.
package refresh
