package id

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormat(t *testing.T) {
	t.Parallel()

	got := New()
	require.Len(t, got, 26)
	for _, r := range got {
		assert.NotContains(t, "ILOU", string(r), "ULID alphabet excludes ambiguous letters")
	}
}

func TestNewMonotonicWithinBatch(t *testing.T) {
	t.Parallel()

	ids := make([]string, 50)
	for i := range ids {
		ids[i] = New()
	}

	assert.True(t, sort.StringsAreSorted(ids), "IDs minted back to back must sort by creation order")

	seen := make(map[string]struct{}, len(ids))
	for _, s := range ids {
		_, dup := seen[s]
		require.False(t, dup, "duplicate id %s", s)
		seen[s] = struct{}{}
	}
}
