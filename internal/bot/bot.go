package bot

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/juliancasaburi/overwatch-queue-tracker/internal/config"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/overfast"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/queue"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/scheduler"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/storage"
)

// Bot represents the Discord bot instance
type Bot struct {
	config    *config.Config
	session   *discordgo.Session
	repo      *storage.Repository
	resolver  *overfast.Client
	engine    *queue.Engine
	scheduler *scheduler.Scheduler
	commands  []*discordgo.ApplicationCommand
}

// New creates a new Bot instance
func New(cfg *config.Config) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Set intents
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	// Initialize storage
	repo, err := storage.NewRepository(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	resolver := overfast.NewClient()
	engine := queue.NewEngine(repo, resolver)

	b := &Bot{
		config:   cfg,
		session:  session,
		repo:     repo,
		resolver: resolver,
		engine:   engine,
	}

	// Register command handlers
	b.registerHandlers()

	return b, nil
}

// Start opens the Discord connection and starts the update cycle
func (b *Bot) Start() error {
	// Open Discord connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	slog.Info("Connected to Discord", "user", b.session.State.User.Username)

	// Register slash commands
	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	// Start the periodic expire/refresh/post cycle
	b.scheduler = scheduler.New(b.session, b.engine, b.config.QueueChannelID, b.config.UpdateInterval)
	if err := b.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	// Stop the update cycle
	if b.scheduler != nil {
		b.scheduler.Stop()
	}

	// Remove registered commands (optional - comment out to keep commands)
	// b.removeCommands()

	// Close storage
	if b.repo != nil {
		b.repo.Close()
	}

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Bot is ready", "guilds", len(r.Guilds))

		if err := s.UpdateWatchStatus(0, "SA Queue | /help"); err != nil {
			slog.Warn("Failed to set presence", "error", err)
		}
	})
}

// handleInteraction processes slash command interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	slog.Debug("Received command", "command", data.Name, "guild", i.GuildID)

	switch data.Name {
	case "register":
		b.handleRegister(s, i)
	case "queue":
		b.handleQueue(s, i)
	case "unqueue":
		b.handleUnqueue(s, i)
	case "status":
		b.handleStatus(s, i)
	case "help":
		b.handleHelp(s, i)
	case "admin":
		b.handleAdmin(s, i)
	default:
		slog.Warn("Unknown command", "command", data.Name)
	}
}
