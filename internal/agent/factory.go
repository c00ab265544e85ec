package agent

import (
	"math/rand"

	"github.com/moonlit-games/werewolf/internal/ai"
	"github.com/moonlit-games/werewolf/internal/game"
)

// ForPlayers builds one provider per autonomous player, skipping the human
// seat. Each provider gets its own rng derived from the seed and seat index,
// so a fixed seed reproduces every choice even when discussion statements are
// generated concurrently. A nil client yields random providers throughout.
func ForPlayers(players []game.Player, human string, client ai.Provider, seed int64) map[string]Provider {
	out := make(map[string]Provider, len(players))
	for i, p := range players {
		if p.Name == human {
			continue
		}
		rng := rand.New(rand.NewSource(seed + int64(i) + 1))
		if client != nil {
			out[p.Name] = NewLLM(client, rng)
		} else {
			out[p.Name] = NewRandom(rng)
		}
	}
	return out
}
