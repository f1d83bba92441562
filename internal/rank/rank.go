package rank

import "strings"

// Tier is a competitive skill tier derived from a player's ranked roles.
// Values match the division strings stored in the database; the OverFast
// API reports the top tier as "ultimate", which parses to TierChampion.
type Tier string

const (
	TierChampion    Tier = "champion"
	TierGrandmaster Tier = "grandmaster"
	TierMaster      Tier = "master"
	TierDiamond     Tier = "diamond"
	TierPlatinum    Tier = "platinum"
	TierGold        Tier = "gold"
	TierSilver      Tier = "silver"
	TierBronze      Tier = "bronze"
	TierUnranked    Tier = "unranked"
	TierUnknown     Tier = "unknown"
)

// Order lists all tiers from highest to lowest. Unranked sorts below every
// competitive tier, Unknown below Unranked.
var Order = []Tier{
	TierChampion,
	TierGrandmaster,
	TierMaster,
	TierDiamond,
	TierPlatinum,
	TierGold,
	TierSilver,
	TierBronze,
	TierUnranked,
	TierUnknown,
}

var displayNames = map[Tier]string{
	TierChampion:    "Champion",
	TierGrandmaster: "Grandmaster",
	TierMaster:      "Master",
	TierDiamond:     "Diamond",
	TierPlatinum:    "Platinum",
	TierGold:        "Gold",
	TierSilver:      "Silver",
	TierBronze:      "Bronze",
	TierUnranked:    "Unranked",
	TierUnknown:     "Unknown",
}

var emojis = map[Tier]string{
	TierChampion:    "👑",
	TierGrandmaster: "🏆",
	TierMaster:      "💜",
	TierDiamond:     "💎",
	TierPlatinum:    "🥈",
	TierGold:        "🥇",
	TierSilver:      "⚪",
	TierBronze:      "🥉",
	TierUnranked:    "📊",
	TierUnknown:     "❓",
}

// Embed colors per tier (Discord color format).
var colors = map[Tier]int{
	TierChampion:    0xFFD700,
	TierGrandmaster: 0xFFAA00,
	TierMaster:      0x9B59B6,
	TierDiamond:     0x3498DB,
	TierPlatinum:    0x95A5A6,
	TierGold:        0xF1C40F,
	TierSilver:      0xBDC3C7,
	TierBronze:      0xCD7F32,
	TierUnranked:    0x7F8C8D,
	TierUnknown:     0x95A5A6,
}

// DisplayName returns the human-readable tier name, e.g. "Grandmaster".
func (t Tier) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return displayNames[TierUnknown]
}

// Emoji returns the emoji used when rendering the tier.
func (t Tier) Emoji() string {
	if e, ok := emojis[t]; ok {
		return e
	}
	return emojis[TierUnknown]
}

// Color returns the Discord embed color associated with the tier.
func (t Tier) Color() int {
	if c, ok := colors[t]; ok {
		return c
	}
	return colors[TierUnknown]
}

// Format returns the tier rendered for display, e.g. "💎 Diamond".
func (t Tier) Format() string {
	return t.Emoji() + " " + t.DisplayName()
}

// priority returns the position of t in Order (lower = higher rank).
// Unrecognized tiers sort after everything else.
func priority(t Tier) int {
	for i, tier := range Order {
		if tier == t {
			return i
		}
	}
	return len(Order)
}

// Higher reports whether a outranks b.
func Higher(a, b Tier) bool {
	return priority(a) < priority(b)
}

// ParseDivision converts an OverFast role division string into a Tier.
// The API calls the top tier "ultimate". Only competitive divisions parse;
// anything else reports ok = false.
func ParseDivision(division string) (Tier, bool) {
	switch Tier(strings.ToLower(division)) {
	case "ultimate", TierChampion:
		return TierChampion, true
	case TierGrandmaster:
		return TierGrandmaster, true
	case TierMaster:
		return TierMaster, true
	case TierDiamond:
		return TierDiamond, true
	case TierPlatinum:
		return TierPlatinum, true
	case TierGold:
		return TierGold, true
	case TierSilver:
		return TierSilver, true
	case TierBronze:
		return TierBronze, true
	}
	return TierUnknown, false
}

// ParseTier converts a stored tier value back into a Tier. Values written
// by older versions or by hand fall back to Unknown.
func ParseTier(s string) Tier {
	t := Tier(strings.ToLower(s))
	for _, tier := range Order {
		if t == tier {
			return tier
		}
	}
	return TierUnknown
}

// HighestDivision derives a single tier from the role divisions found on a
// profile. No divisions at all means the player has platform data but no
// ranked role this season (Unranked); divisions that are present but not
// recognized yield Unknown.
func HighestDivision(divisions []string) Tier {
	found := make([]Tier, 0, len(divisions))
	for _, d := range divisions {
		if d == "" {
			continue
		}
		if t, ok := ParseDivision(d); ok {
			found = append(found, t)
		} else {
			found = append(found, TierUnknown)
		}
	}

	if len(found) == 0 {
		return TierUnranked
	}

	best := found[0]
	for _, t := range found[1:] {
		if Higher(t, best) {
			best = t
		}
	}
	return best
}
