package storage_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliancasaburi/overwatch-queue-tracker/internal/rank"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func addPlayer(t *testing.T, repo *storage.Repository, discordID, battletag string) {
	t.Helper()
	_, err := repo.UpsertPlayer(discordID, battletag)
	require.NoError(t, err)
}

func TestUpsertPlayer(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.UpsertPlayer("100", "Player-1234")
	require.NoError(t, err)
	assert.True(t, created)

	p, err := repo.GetPlayer("100")
	require.NoError(t, err)
	assert.Equal(t, "Player-1234", p.BattleTag)

	// Re-registering overwrites the battletag without a new row.
	created, err = repo.UpsertPlayer("100", "Other-5678")
	require.NoError(t, err)
	assert.False(t, created)

	p, err = repo.GetPlayer("100")
	require.NoError(t, err)
	assert.Equal(t, "Other-5678", p.BattleTag)
}

func TestGetPlayerMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetPlayer("999")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpsertQueueEntry(t *testing.T) {
	repo := newTestRepo(t)
	addPlayer(t, repo, "100", "Player-1234")

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	created, err := repo.UpsertQueueEntry("100", rank.TierGold, first)
	require.NoError(t, err)
	assert.True(t, created)

	// Re-joining resets the timestamp and tier, never duplicates.
	later := first.Add(2 * time.Hour)
	created, err = repo.UpsertQueueEntry("100", rank.TierUnknown, later)
	require.NoError(t, err)
	assert.False(t, created)

	count, err := repo.CountQueue()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entries, err := repo.ListQueue()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rank.TierUnknown, entries[0].Tier)
	assert.WithinDuration(t, later, entries[0].QueuedAt, time.Second)
}

func TestUpdateQueueRank(t *testing.T) {
	repo := newTestRepo(t)
	addPlayer(t, repo, "100", "Player-1234")

	_, err := repo.UpsertQueueEntry("100", rank.TierUnknown, time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.UpdateQueueRank("100", rank.TierDiamond))

	entries, err := repo.ListQueue()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rank.TierDiamond, entries[0].Tier)
}

func TestRemoveQueueEntry(t *testing.T) {
	repo := newTestRepo(t)
	addPlayer(t, repo, "100", "Player-1234")

	removed, err := repo.RemoveQueueEntry("100")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.UpsertQueueEntry("100", rank.TierGold, time.Now())
	require.NoError(t, err)

	removed, err = repo.RemoveQueueEntry("100")
	require.NoError(t, err)
	assert.True(t, removed)

	count, err := repo.CountQueue()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestListQueueOrder(t *testing.T) {
	repo := newTestRepo(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Inserted out of join order on purpose.
	for _, p := range []struct {
		id     string
		tag    string
		offset time.Duration
	}{
		{"300", "Third-3333", 2 * time.Hour},
		{"100", "First-1111", 0},
		{"200", "Second-2222", time.Hour},
	} {
		addPlayer(t, repo, p.id, p.tag)
		_, err := repo.UpsertQueueEntry(p.id, rank.TierGold, base.Add(p.offset))
		require.NoError(t, err)
	}

	entries, err := repo.ListQueue()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "First-1111", entries[0].BattleTag)
	assert.Equal(t, "Second-2222", entries[1].BattleTag)
	assert.Equal(t, "Third-3333", entries[2].BattleTag)
}

func TestRemoveExpired(t *testing.T) {
	repo := newTestRepo(t)
	cutoff := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	addPlayer(t, repo, "100", "Old-1111")
	addPlayer(t, repo, "200", "Edge-2222")
	addPlayer(t, repo, "300", "Fresh-3333")

	_, err := repo.UpsertQueueEntry("100", rank.TierGold, cutoff.Add(-time.Second))
	require.NoError(t, err)
	_, err = repo.UpsertQueueEntry("200", rank.TierGold, cutoff)
	require.NoError(t, err)
	_, err = repo.UpsertQueueEntry("300", rank.TierGold, cutoff.Add(time.Hour))
	require.NoError(t, err)

	removed, err := repo.RemoveExpired(cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	entries, err := repo.ListQueue()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Edge-2222", entries[0].BattleTag)
	assert.Equal(t, "Fresh-3333", entries[1].BattleTag)
}

func TestClearQueue(t *testing.T) {
	repo := newTestRepo(t)

	removed, err := repo.ClearQueue()
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	addPlayer(t, repo, "100", "Player-1111")
	addPlayer(t, repo, "200", "Player-2222")
	for _, id := range []string{"100", "200"} {
		_, err := repo.UpsertQueueEntry(id, rank.TierGold, time.Now())
		require.NoError(t, err)
	}

	removed, err = repo.ClearQueue()
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	count, err := repo.CountQueue()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
