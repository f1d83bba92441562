package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/juliancasaburi/overwatch-queue-tracker/internal/rank"
)

// Repository handles all database operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository with SQLite
func NewRepository(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			discord_id VARCHAR(20) UNIQUE NOT NULL,
			battletag VARCHAR(50) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS queue (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			discord_id VARCHAR(20) UNIQUE NOT NULL,
			queued_at TIMESTAMP NOT NULL,
			rank_tier VARCHAR(20) NOT NULL DEFAULT 'unknown',
			FOREIGN KEY (discord_id) REFERENCES players(discord_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_queued_at ON queue(queued_at)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Player operations

// UpsertPlayer inserts a player or overwrites their battletag. Returns
// true when the player was newly registered.
func (r *Repository) UpsertPlayer(discordID, battletag string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM players WHERE discord_id = ?)`,
		discordID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	_, err = r.db.Exec(
		`INSERT INTO players (discord_id, battletag, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(discord_id) DO UPDATE SET battletag = excluded.battletag, updated_at = excluded.updated_at`,
		discordID, battletag, now, now,
	)
	if err != nil {
		return false, err
	}

	return !exists, nil
}

// GetPlayer finds a player by Discord user ID
func (r *Repository) GetPlayer(discordID string) (*Player, error) {
	p := &Player{}
	err := r.db.QueryRow(
		`SELECT id, discord_id, battletag, created_at, updated_at FROM players WHERE discord_id = ?`,
		discordID,
	).Scan(&p.ID, &p.DiscordID, &p.BattleTag, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Queue operations

// UpsertQueueEntry adds a player to the queue or, when already queued,
// resets their queued_at and rank_tier. Returns true when the entry was
// newly created.
func (r *Repository) UpsertQueueEntry(discordID string, tier rank.Tier, at time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM queue WHERE discord_id = ?)`,
		discordID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	_, err = r.db.Exec(
		`INSERT INTO queue (discord_id, queued_at, rank_tier) VALUES (?, ?, ?)
		 ON CONFLICT(discord_id) DO UPDATE SET queued_at = excluded.queued_at, rank_tier = excluded.rank_tier`,
		discordID, at.UTC(), string(tier),
	)
	if err != nil {
		return false, err
	}

	return !exists, nil
}

// UpdateQueueRank stores a freshly resolved rank tier for a queued player
func (r *Repository) UpdateQueueRank(discordID string, tier rank.Tier) error {
	_, err := r.db.Exec(
		`UPDATE queue SET rank_tier = ? WHERE discord_id = ?`,
		string(tier), discordID,
	)
	return err
}

// RemoveQueueEntry removes a player from the queue. Returns true when an
// entry actually existed.
func (r *Repository) RemoveQueueEntry(discordID string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM queue WHERE discord_id = ?`, discordID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListQueue returns all queue entries joined with player battletags,
// oldest first
func (r *Repository) ListQueue() ([]*QueueEntry, error) {
	rows, err := r.db.Query(
		`SELECT q.id, q.discord_id, p.battletag, q.rank_tier, q.queued_at
		 FROM queue q
		 JOIN players p ON p.discord_id = q.discord_id
		 ORDER BY q.queued_at, q.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*QueueEntry
	for rows.Next() {
		e := &QueueEntry{}
		var tier string
		if err := rows.Scan(&e.ID, &e.DiscordID, &e.BattleTag, &tier, &e.QueuedAt); err != nil {
			return nil, err
		}
		e.Tier = rank.ParseTier(tier)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// RemoveExpired deletes queue entries older than the cutoff and returns
// how many were removed. Entries queued exactly at the cutoff stay.
func (r *Repository) RemoveExpired(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM queue WHERE queued_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ClearQueue removes every queue entry and returns how many were removed
func (r *Repository) ClearQueue() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM queue`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountQueue returns the number of players currently queued
func (r *Repository) CountQueue() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM queue`).Scan(&count)
	return count, err
}
