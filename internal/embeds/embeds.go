// Package embeds builds every Discord embed the bot sends: the periodic
// queue status post, command confirmations, and error messages.
package embeds

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/juliancasaburi/overwatch-queue-tracker/internal/queue"
	"github.com/juliancasaburi/overwatch-queue-tracker/internal/rank"
)

const (
	colorBlurple = 0x5865F2
	colorGreen   = 0x2ECC71
	colorRed     = 0xE74C3C
	colorBlue    = 0x3498DB
	colorOrange  = 0xF39C12
	colorGray    = 0x95A5A6
	colorPurple  = 0x9B59B6
)

// fieldValueLimit is Discord's per-field character cap.
const fieldValueLimit = 1024

// QueueStatus renders the queue grouped by rank tier, highest first. The
// embed takes the color of the highest tier present.
func QueueStatus(groups []queue.TierGroup, total int) *discordgo.MessageEmbed {
	color := colorBlurple
	if len(groups) > 0 {
		color = groups[0].Tier.Color()
	}

	embed := &discordgo.MessageEmbed{
		Title: "SA Queue Status",
		Color: color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Ranks refresh every 10 minutes",
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if total == 0 {
		embed.Description = "No players currently in queue.\nUse `/queue` to join!"
		return embed
	}

	playerWord := "players"
	if total == 1 {
		playerWord = "player"
	}
	embed.Description = fmt.Sprintf("**%d** %s looking for a match", total, playerWord)

	for _, group := range groups {
		mentions := make([]string, len(group.Entries))
		for i, entry := range group.Entries {
			mentions[i] = "<@" + entry.DiscordID + ">"
		}

		value := strings.Join(mentions, ", ")
		if len(value) > fieldValueLimit {
			value = value[:fieldValueLimit-4] + "..."
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s %s (%d)", group.Tier.Emoji(), group.Tier.DisplayName(), len(group.Entries)),
			Value: value,
		})
	}

	return embed
}

// RegistrationSuccess confirms a stored battletag and shows the rank
// resolved for it
func RegistrationSuccess(battletag string, tier rank.Tier, isUpdate bool) *discordgo.MessageEmbed {
	action := "registered"
	if isUpdate {
		action = "updated"
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Registration Successful",
		Description: fmt.Sprintf("Your BattleTag has been %s!", action),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "BattleTag", Value: rank.DisplayBattleTag(battletag), Inline: true},
			{Name: "Rank", Value: tier.Format(), Inline: true},
		},
	}

	if tier == rank.TierUnknown {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Note",
			Value: "Could not fetch your rank. This may be because your profile is private or the BattleTag was not found.",
		})
	}

	return embed
}

// RegistrationError reports an invalid battletag or a failed save
func RegistrationError(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Registration Failed",
		Description: message,
		Color:       colorRed,
	}
}

// QueueJoin confirms a fresh queue entry
func QueueJoin(tier rank.Tier) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Joined Queue",
		Description: "You are now in the queue! Use `/status` to see who else is looking for a match.",
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Current Rank", Value: tier.Format(), Inline: true},
			{
				Name:  "Auto-Timeout",
				Value: "You will be automatically removed after 24 hours. Re-queue to reset the timer.",
			},
		},
	}
}

// QueueRefresh confirms a keep-alive re-join
func QueueRefresh() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Queue Refreshed",
		Description: "Your queue timer has been reset. You will remain in queue for another 24 hours.",
		Color:       colorBlue,
	}
}

// QueueLeave confirms an unqueue
func QueueLeave() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Left Queue",
		Description: "You have been removed from the queue.",
		Color:       colorOrange,
	}
}

// NotInQueue tells the caller they have no queue entry to leave
func NotInQueue() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Not in Queue",
		Description: "You are not currently in the queue.",
		Color:       colorGray,
	}
}

// UserNotInQueue is the admin-remove variant naming the targeted user
func UserNotInQueue(discordID string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Not in Queue",
		Description: fmt.Sprintf("<@%s> is not currently in the queue.", discordID),
		Color:       colorGray,
	}
}

// NotRegistered nudges an unregistered user toward /register
func NotRegistered() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Not Registered",
		Description: "You need to register your BattleTag first!\nUse `/register <battletag>` (e.g., `/register Player#1234`)",
		Color:       colorRed,
	}
}

// AdminClear reports how many entries a queue wipe removed
func AdminClear(count int64) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Queue Cleared",
		Description: fmt.Sprintf("Removed **%d** player(s) from the queue.", count),
		Color:       colorPurple,
	}
}

// AdminRemove confirms the removal of a named user
func AdminRemove(discordID string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Player Removed",
		Description: fmt.Sprintf("Removed <@%s> from the queue.", discordID),
		Color:       colorPurple,
	}
}

// AdminRefresh reports how many ranks a forced refresh updated
func AdminRefresh(count int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Ranks Refreshed",
		Description: fmt.Sprintf("Updated ranks for **%d** queued player(s).", count),
		Color:       colorPurple,
	}
}

// PermissionDenied rejects a non-administrator using an admin command
func PermissionDenied() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Permission Denied",
		Description: "You need administrator permissions to use this command.",
		Color:       colorRed,
	}
}

// Error builds a generic error embed
func Error(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorRed,
	}
}

// Help lists every command and explains the queue lifecycle
func Help() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "SA Queue Tracker - Help",
		Description: "Track Overwatch 2 queue times for South American servers.",
		Color:       colorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "User Commands",
				Value: "`/register <battletag>` - Register your BattleTag (e.g., Player#1234)\n" +
					"`/queue` - Join the queue (24h timeout, re-queue to refresh)\n" +
					"`/unqueue` - Leave the queue\n" +
					"`/status` - Show current queue status by rank\n" +
					"`/help` - Show this help message",
			},
			{
				Name: "Admin Commands",
				Value: "`/admin clear` - Clear the entire queue\n" +
					"`/admin remove <user>` - Remove a user from the queue\n" +
					"`/admin refresh` - Force refresh all queued player ranks",
			},
			{
				Name: "How It Works",
				Value: "1. Register your BattleTag to link your Overwatch 2 account\n" +
					"2. Use `/queue` when you start looking for a match\n" +
					"3. Use `/unqueue` when you're done playing\n" +
					"4. Check `/status` to see who else is queuing\n\n" +
					"Ranks are fetched from your public profile and refresh every 10 minutes. " +
					"Queue status is automatically posted every 10 minutes.",
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "All commands work in server channels and DMs",
		},
	}
}
