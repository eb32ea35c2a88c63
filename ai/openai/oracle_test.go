package openai

import (
	"errors"
	"testing"

	"github.com/poiesic/resolvit/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCandidates = []ai.OracleCandidate{
	{RecordId: 1, DisplayName: "John Smith"},
	{RecordId: 2, DisplayName: "Jane Smith"},
}

func TestParseVerdict(t *testing.T) {
	t.Run("chosen candidate", func(t *testing.T) {
		decision, err := parseVerdict(`{"record_id": 1}`, testCandidates)
		require.NoError(t, err)
		assert.True(t, decision.Matched)
		assert.Equal(t, uint64(1), decision.RecordId)
	})

	t.Run("declared no-match", func(t *testing.T) {
		decision, err := parseVerdict(`{"record_id": null}`, testCandidates)
		require.NoError(t, err)
		assert.False(t, decision.Matched)
	})

	t.Run("markdown fences stripped", func(t *testing.T) {
		decision, err := parseVerdict("```json\n{\"record_id\": 2}\n```", testCandidates)
		require.NoError(t, err)
		assert.True(t, decision.Matched)
		assert.Equal(t, uint64(2), decision.RecordId)
	})

	t.Run("hallucinated id is a no-match", func(t *testing.T) {
		decision, err := parseVerdict(`{"record_id": 999}`, testCandidates)
		require.NoError(t, err)
		assert.False(t, decision.Matched)
	})

	t.Run("malformed json fails", func(t *testing.T) {
		_, err := parseVerdict(`the best match is record 1`, testCandidates)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ai.ErrOracleFailed))
	})
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := buildSystemPrompt(testCandidates)
	assert.Contains(t, prompt, "id 1: John Smith")
	assert.Contains(t, prompt, "id 2: Jane Smith")
	assert.Contains(t, prompt, "record_id")
}
