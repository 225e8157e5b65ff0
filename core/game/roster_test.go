package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterJoinNew(t *testing.T) {
	r := NewRoster()

	rec, reclaimed := r.Join("c1", "alice")
	require.NotNil(t, rec)
	assert.False(t, reclaimed)
	assert.Equal(t, "c1", rec.ConnID)
	assert.Equal(t, "alice", rec.Name)
	assert.Equal(t, 1, r.Len())
}

func TestRosterRejoinReclaimsRecord(t *testing.T) {
	r := NewRoster()

	first, _ := r.Join("c1", "alice")
	first.Score = 750
	r.Ban("c1")
	r.MarkOffline("c1")

	// Same name, fresh connection: the old record moves to the new id with
	// score and ban state intact.
	second, reclaimed := r.Join("c2", "alice")
	assert.True(t, reclaimed)
	assert.Same(t, first, second)
	assert.Equal(t, "c2", second.ConnID)
	assert.Equal(t, 750, second.Score)
	assert.True(t, second.Banned)
	assert.False(t, second.Offline)

	assert.Nil(t, r.Get("c1"))
	assert.Same(t, second, r.Get("c2"))
	assert.Equal(t, 1, r.Len())
}

func TestRosterOfflineKeepsRecord(t *testing.T) {
	r := NewRoster()
	r.Join("c1", "alice")

	assert.True(t, r.MarkOffline("c1"))
	assert.False(t, r.MarkOffline("ghost"))

	views := r.Snapshot()
	require.Len(t, views, 1)
	assert.True(t, views[0].Offline)
}

func TestRosterResetScores(t *testing.T) {
	r := NewRoster()
	a, _ := r.Join("c1", "alice")
	b, _ := r.Join("c2", "bob")
	a.Score = 100
	b.Score = 200
	r.Ban("c2")

	r.ResetScores()

	assert.Equal(t, 0, a.Score)
	assert.Equal(t, 0, b.Score)
	assert.True(t, b.Banned)
	assert.Equal(t, 2, r.Len())
}

func TestRosterSnapshotOrder(t *testing.T) {
	r := NewRoster()
	r.Join("c1", "alice")
	r.Join("c2", "bob")
	r.Join("c3", "alice") // rejoin must not change position

	views := r.Snapshot()
	require.Len(t, views, 2)
	assert.Equal(t, "alice", views[0].Name)
	assert.Equal(t, "c3", views[0].ID)
	assert.Equal(t, "bob", views[1].Name)
}
