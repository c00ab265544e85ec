package agent

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/moonlit-games/werewolf/internal/game"
)

// DefaultStatement is used when a provider has nothing to say.
const DefaultStatement = "..."

var cannedStatements = []string{
	"Hard to say anything yet, let's hear everyone out.",
	"Someone reacted a little too fast there for my taste.",
	"I'm a villager, for what that's worth.",
	"We should focus on who changed their story.",
	"Not enough information. I'll hold my vote until the end.",
	"Last night made me suspicious of the quiet ones.",
	"Someone here is lying and I intend to find out who.",
	"We need to settle on a vote before dusk.",
}

// Random draws every decision uniformly from the candidate set and speaks in
// canned statements. Used for automated simulation and as the fallback behind
// the model-backed provider.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom wraps the given seeded source. The source must not be shared with
// another concurrently-used provider if reproducibility matters.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) Discuss(_ context.Context, _ Decision) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cannedStatements[r.rng.Intn(len(cannedStatements))], nil
}

func (r *Random) pick(d Decision) (string, error) {
	if len(d.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty candidate set for %s", game.ErrIllegalAction, d.Kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return uniform(r.rng, d.Candidates), nil
}

func (r *Random) Vote(_ context.Context, d Decision) (string, error)   { return r.pick(d) }
func (r *Random) Divine(_ context.Context, d Decision) (string, error) { return r.pick(d) }
func (r *Random) Guard(_ context.Context, d Decision) (string, error)  { return r.pick(d) }
func (r *Random) Attack(_ context.Context, d Decision) (string, error) { return r.pick(d) }
