package bot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/juliancasaburi/overwatch-queue-tracker/internal/embeds"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/queue"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/rank"
)

const (
	// resolveTimeout bounds a single rank lookup.
	resolveTimeout = 10 * time.Second

	// refreshTimeout bounds a paced refresh of the whole queue.
	refreshTimeout = 2 * time.Minute
)

// Slash command definitions
func (b *Bot) getCommandDefinitions() []*discordgo.ApplicationCommand {
	adminPermission := int64(discordgo.PermissionAdministrator)
	dmPermission := false

	return []*discordgo.ApplicationCommand{
		{
			Name:        "register",
			Description: "Register your BattleTag to track your rank",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "battletag",
					Description: "Your BattleTag (e.g., Player#1234)",
					Required:    true,
				},
			},
		},
		{
			Name:        "queue",
			Description: "Join the queue to find other players",
		},
		{
			Name:        "unqueue",
			Description: "Leave the queue",
		},
		{
			Name:        "status",
			Description: "Show current queue status",
		},
		{
			Name:        "help",
			Description: "Show help information and available commands",
		},
		{
			Name:                     "admin",
			Description:              "Administrative commands for queue management",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &dmPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Clear all players from the queue",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a specific user from the queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "The user to remove from the queue",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "refresh",
					Description: "Force refresh ranks for all queued players",
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	slog.Info("Registering slash commands")

	commandDefinitions := b.getCommandDefinitions()
	registeredCommands := make([]*discordgo.ApplicationCommand, 0, len(commandDefinitions))

	for _, cmd := range commandDefinitions {
		registered, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID,
			"", // Empty string = global command
			cmd,
		)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		registeredCommands = append(registeredCommands, registered)
		slog.Debug("Registered command", "name", cmd.Name)
	}

	b.commands = registeredCommands
	slog.Info("Slash commands registered", "count", len(registeredCommands))
	return nil
}

// removeCommands removes all registered slash commands
func (b *Bot) removeCommands() {
	for _, cmd := range b.commands {
		err := b.session.ApplicationCommandDelete(b.session.State.User.ID, "", cmd.ID)
		if err != nil {
			slog.Error("Failed to remove command", "name", cmd.Name, "error", err)
		}
	}
}

// handleRegister handles the /register command
func (b *Bot) handleRegister(s *discordgo.Session, i *discordgo.InteractionCreate) {
	raw := i.ApplicationCommandData().Options[0].StringValue()
	user := interactionUser(i)

	// Respond immediately to avoid timeout
	deferResponse(s, i)

	apiTag, err := rank.NormalizeBattleTag(raw)
	if err != nil {
		editResponseEmbed(s, i, embeds.RegistrationError(fmt.Sprintf(
			"Invalid BattleTag format: `%s`\n\nPlease use the format `Username#1234`\nExample: `/register Player#1234`",
			raw,
		)))
		return
	}

	// Resolve the rank once so the confirmation can show it. An
	// unresolvable rank does not block registration.
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	tier := b.resolver.FetchPlayerRank(ctx, apiTag)

	created, err := b.repo.UpsertPlayer(user.ID, apiTag)
	if err != nil {
		slog.Error("Failed to save registration", "user", user.ID, "error", err)
		editResponseEmbed(s, i, embeds.RegistrationError(
			"An error occurred while saving your registration. Please try again later.",
		))
		return
	}

	slog.Info("Player registered", "user", user.ID, "battletag", apiTag, "rank", string(tier), "new", created)
	editResponseEmbed(s, i, embeds.RegistrationSuccess(apiTag, tier, !created))
}

// handleQueue handles the /queue command
func (b *Bot) handleQueue(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)

	// Unregistered users get an ephemeral nudge before any API call.
	if _, err := b.repo.GetPlayer(user.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondEphemeralEmbed(s, i, embeds.NotRegistered())
			return
		}
		slog.Error("Failed to look up player", "user", user.ID, "error", err)
		respondWithEmbed(s, i, embeds.Error("Queue Error", "An error occurred. Please try again later."))
		return
	}

	deferResponse(s, i)

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	entry, created, err := b.engine.Join(ctx, user.ID)
	if err != nil {
		if errors.Is(err, queue.ErrNotRegistered) {
			editResponseEmbed(s, i, embeds.NotRegistered())
			return
		}
		slog.Error("Failed to join queue", "user", user.ID, "error", err)
		editResponseEmbed(s, i, embeds.Error("Queue Error", "An error occurred. Please try again later."))
		return
	}

	if created {
		slog.Info("Player joined queue", "user", user.ID, "rank", string(entry.Tier))
		editResponseEmbed(s, i, embeds.QueueJoin(entry.Tier))
	} else {
		slog.Info("Player refreshed queue", "user", user.ID)
		editResponseEmbed(s, i, embeds.QueueRefresh())
	}
}

// handleUnqueue handles the /unqueue command
func (b *Bot) handleUnqueue(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)

	err := b.engine.Leave(user.ID)
	switch {
	case err == nil:
		slog.Info("Player left queue", "user", user.ID)
		respondWithEmbed(s, i, embeds.QueueLeave())
	case errors.Is(err, queue.ErrNotQueued):
		respondWithEmbed(s, i, embeds.NotInQueue())
	default:
		slog.Error("Failed to leave queue", "user", user.ID, "error", err)
		respondWithEmbed(s, i, embeds.Error("Queue Error", "An error occurred. Please try again later."))
	}
}

// handleStatus handles the /status command
func (b *Bot) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	deferResponse(s, i)

	groups, total, err := b.engine.Status()
	if err != nil {
		slog.Error("Failed to compute queue status", "error", err)
		editResponseEmbed(s, i, embeds.Error("Status Error", "Could not load the queue status. Please try again later."))
		return
	}

	editResponseEmbed(s, i, embeds.QueueStatus(groups, total))
}

// handleHelp handles the /help command
func (b *Bot) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respondWithEmbed(s, i, embeds.Help())
}

// handleAdmin dispatches the /admin subcommands
func (b *Bot) handleAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !hasAdminPermission(i) {
		respondEphemeralEmbed(s, i, embeds.PermissionDenied())
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "clear":
		b.handleAdminClear(s, i)
	case "remove":
		b.handleAdminRemove(s, i, options[0])
	case "refresh":
		b.handleAdminRefresh(s, i)
	default:
		slog.Warn("Unknown admin subcommand", "subcommand", options[0].Name)
	}
}

// handleAdminClear handles /admin clear
func (b *Bot) handleAdminClear(s *discordgo.Session, i *discordgo.InteractionCreate) {
	count, err := b.engine.AdminClear()
	if err != nil {
		slog.Error("Failed to clear queue", "error", err)
		respondWithEmbed(s, i, embeds.Error("Queue Error", "Could not clear the queue. Please try again later."))
		return
	}

	slog.Info("Admin cleared queue", "admin", interactionUser(i).ID, "count", count)
	respondWithEmbed(s, i, embeds.AdminClear(count))
}

// handleAdminRemove handles /admin remove
func (b *Bot) handleAdminRemove(s *discordgo.Session, i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	target := sub.Options[0].UserValue(s)

	err := b.engine.AdminRemove(target.ID)
	switch {
	case err == nil:
		slog.Info("Admin removed player from queue", "admin", interactionUser(i).ID, "target", target.ID)
		respondWithEmbed(s, i, embeds.AdminRemove(target.ID))
	case errors.Is(err, queue.ErrNotFound):
		respondWithEmbed(s, i, embeds.UserNotInQueue(target.ID))
	default:
		slog.Error("Failed to remove player from queue", "target", target.ID, "error", err)
		respondWithEmbed(s, i, embeds.Error("Queue Error", "Could not remove the player. Please try again later."))
	}
}

// handleAdminRefresh handles /admin refresh
func (b *Bot) handleAdminRefresh(s *discordgo.Session, i *discordgo.InteractionCreate) {
	deferResponse(s, i)

	count, err := b.repo.CountQueue()
	if err != nil {
		slog.Error("Failed to count queue", "error", err)
		editResponseEmbed(s, i, embeds.Error("Queue Error", "An error occurred. Please try again later."))
		return
	}
	if count == 0 {
		editResponseEmbed(s, i, embeds.Error("No Players in Queue", "There are no players in the queue to refresh."))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	updated, err := b.engine.Refresh(ctx)
	if err != nil {
		slog.Error("Failed to refresh queue ranks", "error", err)
		editResponseEmbed(s, i, embeds.Error("Refresh Error", "Could not refresh all ranks. Please try again later."))
		return
	}

	slog.Info("Admin refreshed queue ranks", "admin", interactionUser(i).ID, "count", updated)
	editResponseEmbed(s, i, embeds.AdminRefresh(updated))
}

// Helper functions

// interactionUser returns the invoking user for both guild and DM
// interactions.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// hasAdminPermission reports whether the caller holds the administrator
// bit. Discord hides the admin command behind DefaultMemberPermissions
// already; this guards servers that loosen the command permissions.
func hasAdminPermission(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func respondWithEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func respondEphemeralEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func editResponseEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
}
