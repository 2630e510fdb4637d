package hub

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_UpsertOverwrites(t *testing.T) {
	registry := NewSessionRegistry()
	id := uuid.New()

	first := registry.Upsert(id, "alice")
	assert.Equal(t, "alice", first.Name)

	// Re-joining with the same id is a re-announce, not an error.
	second := registry.Upsert(id, "alice-renamed")
	assert.Equal(t, "alice-renamed", second.Name)
	assert.Equal(t, 1, registry.Len())

	got, ok := registry.Get(id)
	require.True(t, ok)
	assert.Equal(t, "alice-renamed", got.Name)
}

func TestSessionRegistry_Remove(t *testing.T) {
	registry := NewSessionRegistry()
	id := uuid.New()
	registry.Upsert(id, "alice")

	removed, ok := registry.Remove(id)
	require.True(t, ok)
	assert.Equal(t, "alice", removed.Name)
	assert.Equal(t, 0, registry.Len())

	_, ok = registry.Remove(id)
	assert.False(t, ok, "removing an unknown id reports absence")
}

func TestSessionRegistry_SnapshotIsACopy(t *testing.T) {
	registry := NewSessionRegistry()
	registry.Upsert(uuid.New(), "alice")
	registry.Upsert(uuid.New(), "bob")

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 2)

	// Mutating the registry afterwards must not change the snapshot.
	registry.Upsert(uuid.New(), "carol")
	assert.Len(t, snapshot, 2)
}
