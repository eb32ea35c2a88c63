// Package match runs the query pipeline end to end: normalize, consult the
// result cache, retrieve a blended shortlist from the current index
// snapshot, rank, and fall back to the disambiguation oracle when no
// candidate clears the acceptance threshold.
//
// Infrastructure failures degrade rather than fail: a dead encoder drops
// the pipeline to lexical-only retrieval, a dead oracle yields a
// low-confidence (or no-match, under the strict policy) result. The only
// caller-visible errors are malformed input and a never-built index.
package match
