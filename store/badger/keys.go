package badger

import (
	"fmt"

	"github.com/poiesic/resolvit/core"
)

// Key prefixes for different data types
const (
	recordPrefix     = "canrec"
	recordNamePrefix = "canname"
	vectorPrefix     = "embvec"
)

// makeRecordKey generates a key for a canonical record by ID.
func makeRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", recordPrefix, id))
}

// makeNameKey generates a key for the normalized-name index.
func makeNameKey(normalizedName string) []byte {
	return []byte(fmt.Sprintf("%s:%s", recordNamePrefix, normalizedName))
}

// makeVectorKey generates a key for a cached embedding vector. The key is a
// content hash of the model and the normalized text, so a model change
// naturally misses every old entry.
func makeVectorKey(model, normText string) []byte {
	id := core.IDFromContent(model + "\x00" + normText)
	return []byte(fmt.Sprintf("%s:%d", vectorPrefix, id))
}
