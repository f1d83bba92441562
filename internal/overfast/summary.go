package overfast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/juliancasaburi/overwatch-queue-tracker/internal/rank"
)

// PlayerSummary is the response from the player summary endpoint
type PlayerSummary struct {
	Username    string           `json:"username"`
	Avatar      string           `json:"avatar"`
	Title       string           `json:"title"`
	Endorsement *Endorsement     `json:"endorsement"`
	Competitive *CompetitiveData `json:"competitive"`
	Privacy     string           `json:"privacy"`
}

type Endorsement struct {
	Level int `json:"level"`
}

// CompetitiveData holds per-platform competitive ranks. Either platform
// may be null when the player has no placements there.
type CompetitiveData struct {
	PC      *PlatformRanks `json:"pc"`
	Console *PlatformRanks `json:"console"`
}

type PlatformRanks struct {
	Season  int       `json:"season"`
	Tank    *RoleRank `json:"tank"`
	Damage  *RoleRank `json:"damage"`
	Support *RoleRank `json:"support"`
}

// RoleRank is a single role's competitive placement. Division is the
// skill tier name ("gold", "diamond", ...) and Tier the 1-5 number
// within it.
type RoleRank struct {
	Division string `json:"division"`
	Tier     int    `json:"tier"`
}

// HighestRank derives the player's overall tier from the PC role ranks.
// Private profiles and players with no PC competitive data resolve to
// unknown; placed players resolve to their best role's tier.
func (s *PlayerSummary) HighestRank() rank.Tier {
	if strings.EqualFold(s.Privacy, "private") {
		return rank.TierUnknown
	}
	if s.Competitive == nil || s.Competitive.PC == nil {
		return rank.TierUnknown
	}

	var divisions []string
	for _, role := range []*RoleRank{s.Competitive.PC.Tank, s.Competitive.PC.Damage, s.Competitive.PC.Support} {
		if role != nil {
			divisions = append(divisions, role.Division)
		}
	}

	return rank.HighestDivision(divisions)
}

// GetPlayerSummary fetches the career summary for a battletag. The tag
// must already be in API form (Name-1234).
func (c *Client) GetPlayerSummary(ctx context.Context, battletag string) (*PlayerSummary, error) {
	var summary PlayerSummary
	path := fmt.Sprintf("/players/%s/summary", url.PathEscape(battletag))
	if err := c.get(ctx, path, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// FetchPlayerRank resolves a battletag to its current rank tier. Every
// failure collapses to unknown so queue updates never stall on a bad
// profile; the cause is logged instead.
func (c *Client) FetchPlayerRank(ctx context.Context, battletag string) rank.Tier {
	apiTag, err := rank.NormalizeBattleTag(battletag)
	if err != nil {
		slog.Warn("Invalid battletag format", "battletag", battletag)
		return rank.TierUnknown
	}

	summary, err := c.GetPlayerSummary(ctx, apiTag)
	if err != nil {
		switch {
		case errors.Is(err, ErrPlayerNotFound):
			slog.Info("Player not found on Blizzard servers", "battletag", apiTag)
		case errors.Is(err, ErrPrivateProfile):
			slog.Info("Player profile is private", "battletag", apiTag)
		default:
			slog.Error("Failed to fetch player summary", "battletag", apiTag, "error", err)
		}
		return rank.TierUnknown
	}

	return summary.HighestRank()
}
