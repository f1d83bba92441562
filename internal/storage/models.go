package storage

import (
	"time"

	"github.com/juliancasaburi/overwatch-queue-tracker/internal/rank"
)

// Player links a Discord user to their Overwatch battletag
type Player struct {
	ID        int64
	DiscordID string
	BattleTag string // API format: Name-1234
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QueueEntry is one player waiting in the matchmaking queue. BattleTag
// is joined in from the players table on reads.
type QueueEntry struct {
	ID        int64
	DiscordID string
	BattleTag string
	Tier      rank.Tier
	QueuedAt  time.Time
}
