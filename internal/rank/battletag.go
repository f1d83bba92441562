package rank

import (
	"errors"
	"strings"
)

// ErrInvalidBattleTag indicates input that doesn't match Name#1234 (or the
// already-normalized Name-1234) shape.
var ErrInvalidBattleTag = errors.New("invalid battletag format")

// NormalizeBattleTag converts a user-supplied BattleTag into the form the
// OverFast API expects (Name-1234). Accepts Name#1234 or a tag that is
// already in API form.
func NormalizeBattleTag(raw string) (string, error) {
	tag := strings.TrimSpace(raw)

	if strings.Contains(tag, "#") {
		parts := strings.Split(tag, "#")
		if len(parts) == 2 && parts[0] != "" && isDigits(parts[1]) {
			return parts[0] + "-" + parts[1], nil
		}
		return "", ErrInvalidBattleTag
	}

	if idx := strings.LastIndex(tag, "-"); idx > 0 {
		if isDigits(tag[idx+1:]) {
			return tag, nil
		}
	}

	return "", ErrInvalidBattleTag
}

// DisplayBattleTag formats a BattleTag for display, restoring the # form.
func DisplayBattleTag(tag string) string {
	if strings.Contains(tag, "#") {
		return tag
	}
	if idx := strings.LastIndex(tag, "-"); idx > 0 && isDigits(tag[idx+1:]) {
		return tag[:idx] + "#" + tag[idx+1:]
	}
	return tag
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
