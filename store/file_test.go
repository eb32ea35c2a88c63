package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/resolvit/core"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileSource_FetchAll(t *testing.T) {
	path := writeFixture(t, `
records:
  - display_name: "José Müller"
    metadata:
      popularity: 0.8
  - id: 42
    display_name: "John Smith"
`)

	records, err := NewFileSource(path).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "José Müller", records[0].DisplayName)
	assert.Equal(t, "jose muller", records[0].NormalizedName)
	assert.Equal(t, core.IDFromContent("jose muller"), records[0].Id)
	assert.Equal(t, 0.8, records[0].Metadata["popularity"])

	assert.Equal(t, core.ID(42), records[1].Id)
	assert.Equal(t, "john smith", records[1].NormalizedName)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource("/nonexistent/records.yaml").FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestFileSource_MalformedYAML(t *testing.T) {
	path := writeFixture(t, "records: [not closed")
	_, err := NewFileSource(path).FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestFileSource_InvalidRecord(t *testing.T) {
	path := writeFixture(t, `
records:
  - display_name: ""
`)
	_, err := NewFileSource(path).FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, core.ErrEmptyDisplayName)
}

func TestFileSource_CancelledContext(t *testing.T) {
	path := writeFixture(t, "records: []")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSource(path).FetchAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
