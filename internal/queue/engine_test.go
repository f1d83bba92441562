package queue

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juliancasaburi/overwatch-queue-tracker/internal/rank"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/storage"
)

type stubResolver struct {
	ranks map[string]rank.Tier
	calls []string
}

func (s *stubResolver) FetchPlayerRank(_ context.Context, battletag string) rank.Tier {
	s.calls = append(s.calls, battletag)
	if tier, ok := s.ranks[battletag]; ok {
		return tier
	}
	return rank.TierUnknown
}

func newTestEngine(t *testing.T, resolver RankResolver) (*Engine, *storage.Repository) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	engine := NewEngine(repo, resolver)
	engine.delay = 0
	return engine, repo
}

func register(t *testing.T, repo *storage.Repository, discordID, battletag string) {
	t.Helper()
	_, err := repo.UpsertPlayer(discordID, battletag)
	require.NoError(t, err)
}

func TestJoinRequiresRegistration(t *testing.T) {
	engine, repo := newTestEngine(t, &stubResolver{})

	_, _, err := engine.Join(context.Background(), "100")
	require.ErrorIs(t, err, ErrNotRegistered)

	count, err := repo.CountQueue()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestJoinResolvesRank(t *testing.T) {
	resolver := &stubResolver{ranks: map[string]rank.Tier{"Player-1234": rank.TierDiamond}}
	engine, repo := newTestEngine(t, resolver)
	register(t, repo, "100", "Player-1234")

	entry, created, err := engine.Join(context.Background(), "100")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, rank.TierDiamond, entry.Tier)
	assert.Equal(t, "Player-1234", entry.BattleTag)
}

func TestRejoinRefreshesEntry(t *testing.T) {
	engine, repo := newTestEngine(t, &stubResolver{})
	register(t, repo, "100", "Player-1234")

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return first }
	_, created, err := engine.Join(context.Background(), "100")
	require.NoError(t, err)
	assert.True(t, created)

	// A later re-join is a keep-alive, not a duplicate.
	second := first.Add(3 * time.Hour)
	engine.now = func() time.Time { return second }
	_, created, err = engine.Join(context.Background(), "100")
	require.NoError(t, err)
	assert.False(t, created)

	entries, err := repo.ListQueue()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.WithinDuration(t, second, entries[0].QueuedAt, time.Second)
}

func TestLeave(t *testing.T) {
	engine, repo := newTestEngine(t, &stubResolver{})
	register(t, repo, "100", "Player-1234")

	require.ErrorIs(t, engine.Leave("100"), ErrNotQueued)

	_, _, err := engine.Join(context.Background(), "100")
	require.NoError(t, err)

	require.NoError(t, engine.Leave("100"))
	require.ErrorIs(t, engine.Leave("100"), ErrNotQueued)
}

func TestExpire(t *testing.T) {
	engine, repo := newTestEngine(t, &stubResolver{})
	register(t, repo, "100", "Stale-1111")
	register(t, repo, "200", "Fresh-2222")

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	_, err := repo.UpsertQueueEntry("100", rank.TierGold, now.Add(-MaxAge-time.Minute))
	require.NoError(t, err)
	_, err = repo.UpsertQueueEntry("200", rank.TierGold, now.Add(-MaxAge+time.Minute))
	require.NoError(t, err)

	engine.now = func() time.Time { return now }
	removed, err := engine.Expire()
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	entries, err := repo.ListQueue()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "200", entries[0].DiscordID)
}

func TestStatusGroupsByTier(t *testing.T) {
	resolver := &stubResolver{ranks: map[string]rank.Tier{
		"Gold-1111":     rank.TierGold,
		"GoldToo-2222":  rank.TierGold,
		"Champ-3333":    rank.TierChampion,
		"Mystery-4444":  rank.TierUnknown,
		"Unplaced-5555": rank.TierUnranked,
	}}
	engine, repo := newTestEngine(t, resolver)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Join order decides order inside each group.
	for i, p := range []struct{ id, tag string }{
		{"1", "Gold-1111"},
		{"2", "Champ-3333"},
		{"3", "GoldToo-2222"},
		{"4", "Mystery-4444"},
		{"5", "Unplaced-5555"},
	} {
		register(t, repo, p.id, p.tag)
		joinedAt := base.Add(time.Duration(i) * time.Minute)
		engine.now = func() time.Time { return joinedAt }
		_, _, err := engine.Join(context.Background(), p.id)
		require.NoError(t, err)
	}

	engine.now = func() time.Time { return base.Add(time.Hour) }
	groups, total, err := engine.Status()
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	// Highest tier first, empty tiers omitted, unknown last.
	require.Len(t, groups, 4)
	assert.Equal(t, rank.TierChampion, groups[0].Tier)
	assert.Equal(t, rank.TierGold, groups[1].Tier)
	assert.Equal(t, rank.TierUnranked, groups[2].Tier)
	assert.Equal(t, rank.TierUnknown, groups[3].Tier)

	require.Len(t, groups[1].Entries, 2)
	assert.Equal(t, "Gold-1111", groups[1].Entries[0].BattleTag)
	assert.Equal(t, "GoldToo-2222", groups[1].Entries[1].BattleTag)
}

func TestStatusExpiresFirst(t *testing.T) {
	engine, repo := newTestEngine(t, &stubResolver{})
	register(t, repo, "100", "Stale-1111")

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	_, err := repo.UpsertQueueEntry("100", rank.TierGold, now.Add(-MaxAge-time.Hour))
	require.NoError(t, err)

	engine.now = func() time.Time { return now }
	groups, total, err := engine.Status()
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, groups)
}

func TestRefreshUpdatesRanks(t *testing.T) {
	resolver := &stubResolver{ranks: map[string]rank.Tier{
		"Climber-1111": rank.TierMaster,
		"Steady-2222":  rank.TierSilver,
	}}
	engine, repo := newTestEngine(t, resolver)

	for _, p := range []struct{ id, tag string }{
		{"100", "Climber-1111"},
		{"200", "Steady-2222"},
		{"300", "Vanished-3333"}, // resolver has no rank for this one
	} {
		register(t, repo, p.id, p.tag)
		_, err := repo.UpsertQueueEntry(p.id, rank.TierBronze, time.Now())
		require.NoError(t, err)
	}

	updated, err := engine.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, updated)
	assert.Len(t, resolver.calls, 3)

	entries, err := repo.ListQueue()
	require.NoError(t, err)
	tiers := make(map[string]rank.Tier)
	for _, e := range entries {
		tiers[e.DiscordID] = e.Tier
	}
	assert.Equal(t, rank.TierMaster, tiers["100"])
	assert.Equal(t, rank.TierSilver, tiers["200"])
	// An unresolvable player does not stall the batch.
	assert.Equal(t, rank.TierUnknown, tiers["300"])
}

func TestRefreshCancelled(t *testing.T) {
	resolver := &stubResolver{}
	engine, repo := newTestEngine(t, resolver)
	engine.delay = 10 * time.Millisecond

	for _, id := range []string{"100", "200"} {
		register(t, repo, id, "Player-"+id)
		_, err := repo.UpsertQueueEntry(id, rank.TierGold, time.Now())
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	updated, err := engine.Refresh(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, updated)
}

func TestAdminClear(t *testing.T) {
	engine, repo := newTestEngine(t, &stubResolver{})

	removed, err := engine.AdminClear()
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	for _, id := range []string{"100", "200"} {
		register(t, repo, id, "Player-"+id)
		_, _, err := engine.Join(context.Background(), id)
		require.NoError(t, err)
	}

	removed, err = engine.AdminClear()
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestAdminRemove(t *testing.T) {
	engine, repo := newTestEngine(t, &stubResolver{})

	require.ErrorIs(t, engine.AdminRemove("100"), ErrNotFound)

	register(t, repo, "100", "Player-1234")
	_, _, err := engine.Join(context.Background(), "100")
	require.NoError(t, err)

	require.NoError(t, engine.AdminRemove("100"))

	count, err := repo.CountQueue()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
