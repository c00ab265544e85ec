package agent

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/moonlit-games/werewolf/internal/ai"
	"github.com/moonlit-games/werewolf/internal/game"
)

// maxAttempts is the call budget per decision: one call plus two retries.
const maxAttempts = 3

// LLM asks a chat model for every decision. Transport failures are retried
// with exponential backoff; once the attempt budget is exhausted, or when the
// reply cannot be parsed into a candidate, the decision degrades to a uniform
// random pick. For a non-empty candidate set the provider always returns a
// legal decision and never an error.
type LLM struct {
	client ai.Provider

	mu       sync.Mutex
	rng      *rand.Rand
	fellBack bool
	degraded int

	// policy builds a fresh retry schedule per call. Overridable in tests.
	policy func() backoff.BackOff
}

func NewLLM(client ai.Provider, rng *rand.Rand) *LLM {
	return &LLM{
		client: client,
		rng:    rng,
		policy: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			return backoff.WithMaxRetries(bo, maxAttempts-1)
		},
	}
}

// Degraded returns how many decisions fell back to a random choice.
func (l *LLM) Degraded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.degraded
}

func (l *LLM) tookFallback() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fellBack
}

func (l *LLM) note(fellBack bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fellBack = fellBack
	if fellBack {
		l.degraded++
	}
}

// complete calls the model with retry. A context canceled mid-flight is not
// retried; the caller treats it like any other exhausted call.
func (l *LLM) complete(ctx context.Context, system, user string) (string, error) {
	var reply string
	op := func() error {
		var err error
		reply, err = l.client.Chat(ctx, system, user)
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(l.policy(), ctx)); err != nil {
		return "", fmt.Errorf("%w: %v", game.ErrProviderFailure, err)
	}
	return reply, nil
}

func (l *LLM) Discuss(ctx context.Context, d Decision) (string, error) {
	reply, err := l.complete(ctx, systemPrompt(d.Self), decisionPrompt(d))
	if err != nil {
		log.Warn().Err(err).Str("player", d.Self.Name).Str("kind", string(d.Kind)).
			Msg("model call failed, using default statement")
		l.note(true)
		return DefaultStatement, nil
	}
	l.note(false)
	return parseStatement(reply), nil
}

func (l *LLM) choose(ctx context.Context, d Decision) (string, error) {
	if len(d.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty candidate set for %s", game.ErrIllegalAction, d.Kind)
	}
	reply, err := l.complete(ctx, systemPrompt(d.Self), decisionPrompt(d))
	if err != nil {
		l.note(true)
		l.mu.Lock()
		pick := uniform(l.rng, d.Candidates)
		l.mu.Unlock()
		log.Warn().Err(err).Str("player", d.Self.Name).Str("kind", string(d.Kind)).
			Str("fallback", pick).Msg("model call failed, falling back to random choice")
		return pick, nil
	}
	l.mu.Lock()
	name, parsed := parseCandidate(reply, d.Candidates, l.rng)
	l.mu.Unlock()
	if !parsed {
		log.Warn().Str("player", d.Self.Name).Str("kind", string(d.Kind)).
			Str("reply", reply).Str("fallback", name).Msg("unparseable model reply, falling back to random choice")
	}
	l.note(!parsed)
	return name, nil
}

func (l *LLM) Vote(ctx context.Context, d Decision) (string, error)   { return l.choose(ctx, d) }
func (l *LLM) Divine(ctx context.Context, d Decision) (string, error) { return l.choose(ctx, d) }
func (l *LLM) Guard(ctx context.Context, d Decision) (string, error)  { return l.choose(ctx, d) }
func (l *LLM) Attack(ctx context.Context, d Decision) (string, error) { return l.choose(ctx, d) }
