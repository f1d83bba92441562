// Package scheduler runs the periodic queue maintenance cycle: expire
// stale entries, refresh ranks, post the status embed.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"

	"github.com/juliancasaburi/overwatch-queue-tracker/internal/embeds"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/queue"
)

// MessageSender posts embeds to a Discord channel. *discordgo.Session
// satisfies it.
type MessageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{"error", err}, keysAndValues...)
	slog.Error(msg, args...)
}

// Scheduler drives the periodic update cycle. Cycles never overlap: a
// slow cycle delays the next one instead of running concurrently with
// it.
type Scheduler struct {
	cron      *cron.Cron
	session   MessageSender
	engine    *queue.Engine
	channelID string
	interval  time.Duration

	wg sync.WaitGroup
}

// New creates a scheduler posting to the given channel every interval
func New(session MessageSender, engine *queue.Engine, channelID string, interval time.Duration) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.DelayIfStillRunning(logger)),
		),
		session:   session,
		engine:    engine,
		channelID: channelID,
		interval:  interval,
	}
}

// Start registers the update cycle and starts the cron. One cycle runs
// immediately so the channel gets a status post at startup; later cycles
// fire every interval.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %ds", int(s.interval.Seconds()))
	id, err := s.cron.AddFunc(spec, s.runCycle)
	if err != nil {
		return fmt.Errorf("failed to schedule update cycle: %w", err)
	}

	// Initial cycle. Running the chain-wrapped job keeps it serialized
	// with the scheduled fires.
	initial := s.cron.Entry(id).WrappedJob
	s.cron.Start()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		initial.Run()
	}()

	slog.Info("Scheduler started", "interval", s.interval.String())
	return nil
}

// Stop halts the cron and waits for a running cycle to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

// runCycle expires stale entries, refreshes every queued player's rank,
// and posts the grouped status to the configured channel. Errors are
// logged; the next cycle always runs. The cycle itself carries no
// deadline: each rank lookup has its own timeout, and a slow cycle
// delays the next one rather than racing it.
func (s *Scheduler) runCycle() {
	slog.Info("Running queue update cycle")

	ctx := context.Background()

	if _, err := s.engine.Expire(); err != nil {
		slog.Error("Failed to expire queue entries", "error", err)
	}

	refreshed, err := s.engine.Refresh(ctx)
	if err != nil {
		slog.Error("Failed to refresh queue ranks", "error", err)
	} else if refreshed > 0 {
		slog.Info("Refreshed queue ranks", "count", refreshed)
	}

	groups, total, err := s.engine.Status()
	if err != nil {
		slog.Error("Failed to compute queue status", "error", err)
		return
	}

	if _, err := s.session.ChannelMessageSendEmbed(s.channelID, embeds.QueueStatus(groups, total)); err != nil {
		slog.Error("Failed to post queue status", "channel", s.channelID, "error", err)
		return
	}

	slog.Info("Posted queue status", "channel", s.channelID, "players", total)
}
