// Package queue implements the matchmaking queue rules: joining,
// leaving, 24-hour expiry, and rank-grouped status.
package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/juliancasaburi/overwatch-queue-tracker/internal/rank"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/storage"
)

const (
	// MaxAge is how long a queue entry lives without a re-join.
	MaxAge = 24 * time.Hour

	// resolveDelay spaces consecutive rank lookups during a bulk refresh.
	resolveDelay = 100 * time.Millisecond
)

// RankResolver resolves a battletag to its current competitive tier.
// Implementations never fail; unresolvable players come back unknown.
type RankResolver interface {
	FetchPlayerRank(ctx context.Context, battletag string) rank.Tier
}

// TierGroup is one rank tier's slice of the queue, ordered by join time.
type TierGroup struct {
	Tier    rank.Tier
	Entries []*storage.QueueEntry
}

// Engine owns the queue business rules on top of the repository
type Engine struct {
	repo     *storage.Repository
	resolver RankResolver
	maxAge   time.Duration
	delay    time.Duration
	now      func() time.Time
}

// NewEngine creates a queue engine with the default entry lifetime
func NewEngine(repo *storage.Repository, resolver RankResolver) *Engine {
	return &Engine{
		repo:     repo,
		resolver: resolver,
		maxAge:   MaxAge,
		delay:    resolveDelay,
		now:      time.Now,
	}
}

// Join adds a registered user to the queue, or refreshes their entry
// when already queued. The rank is resolved synchronously so the
// confirmation can show it.
func (e *Engine) Join(ctx context.Context, discordID string) (*storage.QueueEntry, bool, error) {
	player, err := e.repo.GetPlayer(discordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrNotRegistered
		}
		return nil, false, fmt.Errorf("failed to look up player: %w", err)
	}

	tier := e.resolver.FetchPlayerRank(ctx, player.BattleTag)
	at := e.now().UTC()

	created, err := e.repo.UpsertQueueEntry(discordID, tier, at)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store queue entry: %w", err)
	}

	entry := &storage.QueueEntry{
		DiscordID: discordID,
		BattleTag: player.BattleTag,
		Tier:      tier,
		QueuedAt:  at,
	}
	return entry, created, nil
}

// Leave removes the user's own queue entry
func (e *Engine) Leave(discordID string) error {
	removed, err := e.repo.RemoveQueueEntry(discordID)
	if err != nil {
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}
	if !removed {
		return ErrNotQueued
	}
	return nil
}

// Expire removes entries older than the maximum queue age and returns
// how many were dropped
func (e *Engine) Expire() (int64, error) {
	cutoff := e.now().UTC().Add(-e.maxAge)
	removed, err := e.repo.RemoveExpired(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire queue entries: %w", err)
	}
	if removed > 0 {
		slog.Info("Expired stale queue entries", "count", removed)
	}
	return removed, nil
}

// Refresh re-resolves the rank of every queued player, spacing the
// lookups so a large queue stays inside the API's rate budget. A player
// whose rank cannot be resolved comes back unknown and the batch
// continues. Returns how many entries were updated.
func (e *Engine) Refresh(ctx context.Context) (int, error) {
	entries, err := e.repo.ListQueue()
	if err != nil {
		return 0, fmt.Errorf("failed to list queue: %w", err)
	}

	updated := 0
	for i, entry := range entries {
		if i > 0 {
			select {
			case <-time.After(e.delay):
			case <-ctx.Done():
				return updated, ctx.Err()
			}
		}

		tier := e.resolver.FetchPlayerRank(ctx, entry.BattleTag)
		if err := e.repo.UpdateQueueRank(entry.DiscordID, tier); err != nil {
			slog.Error("Failed to store refreshed rank", "discord_id", entry.DiscordID, "error", err)
			continue
		}
		updated++
	}

	return updated, nil
}

// Status expires stale entries, then groups the remaining queue by rank
// tier in display order. Empty tiers are omitted; entries keep their
// join order inside each group. Also returns the total queue size.
func (e *Engine) Status() ([]TierGroup, int, error) {
	if _, err := e.Expire(); err != nil {
		return nil, 0, err
	}

	entries, err := e.repo.ListQueue()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list queue: %w", err)
	}

	byTier := make(map[rank.Tier][]*storage.QueueEntry)
	for _, entry := range entries {
		byTier[entry.Tier] = append(byTier[entry.Tier], entry)
	}

	var groups []TierGroup
	for _, tier := range rank.Order {
		if members, ok := byTier[tier]; ok {
			groups = append(groups, TierGroup{Tier: tier, Entries: members})
		}
	}

	return groups, len(entries), nil
}

// AdminClear empties the whole queue and returns how many entries were
// removed
func (e *Engine) AdminClear() (int64, error) {
	removed, err := e.repo.ClearQueue()
	if err != nil {
		return 0, fmt.Errorf("failed to clear queue: %w", err)
	}
	return removed, nil
}

// AdminRemove removes another user's queue entry
func (e *Engine) AdminRemove(discordID string) error {
	removed, err := e.repo.RemoveQueueEntry(discordID)
	if err != nil {
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
