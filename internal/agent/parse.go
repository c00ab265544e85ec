package agent

import (
	"math/rand"
	"strings"

	"github.com/moonlit-games/werewolf/internal/game"
)

// parseCandidate resolves a model reply to a candidate name. Matching order:
// exact name after trimming, then the first candidate (in candidate order)
// whose name appears anywhere in the reply, then a uniform random fallback.
// The second return value is false when the fallback was taken.
func parseCandidate(reply string, candidates []game.Player, rng *rand.Rand) (string, bool) {
	trimmed := strings.TrimSpace(reply)
	for _, c := range candidates {
		if trimmed == c.Name {
			return c.Name, true
		}
	}
	for _, c := range candidates {
		if strings.Contains(trimmed, c.Name) {
			return c.Name, true
		}
	}
	return uniform(rng, candidates), false
}

// parseStatement trims a discussion reply, substituting the default statement
// for an empty one.
func parseStatement(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return DefaultStatement
	}
	return trimmed
}
