package agent

import (
	"context"
	"math/rand"

	"github.com/moonlit-games/werewolf/internal/game"
)

// Decision carries everything a provider may consult for one choice: the
// acting player, the legality-filtered candidate set, and the player-scoped
// view of the game history.
type Decision struct {
	Kind       game.DecisionKind
	Day        int
	Phase      game.Phase
	Self       game.Player
	Candidates []game.Player
	View       []game.LogEntry
}

// Provider answers "what does this player do" for every decision kind. Target
// decisions must return a name drawn from d.Candidates; anything else is a
// provider bug, not a caller bug.
type Provider interface {
	Discuss(ctx context.Context, d Decision) (string, error)
	Vote(ctx context.Context, d Decision) (string, error)
	Divine(ctx context.Context, d Decision) (string, error)
	Guard(ctx context.Context, d Decision) (string, error)
	Attack(ctx context.Context, d Decision) (string, error)
}

// Choose dispatches a target decision to the matching provider operation.
func Choose(ctx context.Context, p Provider, d Decision) (string, error) {
	switch d.Kind {
	case game.DecideVote:
		return p.Vote(ctx, d)
	case game.DecideDivine:
		return p.Divine(ctx, d)
	case game.DecideGuard:
		return p.Guard(ctx, d)
	case game.DecideAttack:
		return p.Attack(ctx, d)
	}
	return "", game.ErrIllegalAction
}

// fallbackReporter is implemented by providers that can degrade to a random
// choice, so the metrics decorator can record the outcome.
type fallbackReporter interface {
	tookFallback() bool
}

func uniform(rng *rand.Rand, candidates []game.Player) string {
	return candidates[rng.Intn(len(candidates))].Name
}
