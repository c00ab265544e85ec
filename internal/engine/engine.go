package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/moonlit-games/werewolf/internal/agent"
	"github.com/moonlit-games/werewolf/internal/game"
)

// DefaultMaxStatements bounds the statement history handed to providers.
const DefaultMaxStatements = 20

// Progress is invoked at phase boundaries.
type Progress func(phase game.Phase, day int)

// Engine drives a game to completion with a decision provider for every
// player. It never mutates a state in place; the caller owns the snapshots it
// returns.
type Engine struct {
	Providers     map[string]agent.Provider
	Progress      Progress
	MaxStatements int
}

func New(providers map[string]agent.Provider) *Engine {
	return &Engine{Providers: providers, MaxStatements: DefaultMaxStatements}
}

// Run advances the game until a team wins or ctx is canceled. The returned
// state is always the last fully-applied snapshot; on cancellation it is
// valid and resumable.
func (e *Engine) Run(ctx context.Context, g game.GameState) (game.GameState, error) {
	if g.Over() {
		return g, game.ErrGameOver
	}
	if w, ok := game.CheckVictory(g); ok {
		return finish(g, w), nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return g, err
		}
		next, err := e.day(ctx, g)
		if err != nil {
			return g, err
		}
		g = next
		if w, ok := game.CheckVictory(g); ok {
			return finish(g, w), nil
		}
		if err := ctx.Err(); err != nil {
			return g, err
		}
		e.report(game.PhaseNight, g.Day)
		next, err = resolveNight(ctx, g, e.choose)
		if err != nil {
			return g, err
		}
		g = next
		if w, ok := game.CheckVictory(g); ok {
			return finish(g, w), nil
		}
	}
}

func (e *Engine) report(phase game.Phase, day int) {
	if e.Progress != nil {
		e.Progress(phase, day)
	}
}

func (e *Engine) day(ctx context.Context, g game.GameState) (game.GameState, error) {
	if g.Over() {
		return g, game.ErrGameOver
	}
	e.report(game.PhaseDay, g.Day)
	g = g.WithPhase(game.PhaseDay)
	g = g.Append(game.LogEntry{
		Kind:       game.KindSystem,
		Visibility: game.VisPublic,
		Text:       fmt.Sprintf("--- day %d ---", g.Day),
	})
	g = e.discussion(ctx, g)
	return e.vote(ctx, g)
}

// discussion generates each round's statements concurrently against the same
// frozen snapshot, then applies them in seat order so logs stay deterministic
// for a fixed seed even when provider calls race.
func (e *Engine) discussion(ctx context.Context, g game.GameState) game.GameState {
	rounds := discussionRounds(g.Day)
	for round := 1; round <= rounds; round++ {
		g = g.Append(game.LogEntry{
			Kind:       game.KindSystem,
			Visibility: game.VisPublic,
			Text:       fmt.Sprintf("[discussion] round %d", round),
		})
		alive := g.Alive()
		statements := make([]string, len(alive))
		var wg sync.WaitGroup
		for i, p := range alive {
			prov, ok := e.Providers[p.Name]
			if !ok {
				statements[i] = agent.DefaultStatement
				continue
			}
			wg.Add(1)
			go func(i int, p game.Player, snapshot game.GameState) {
				defer wg.Done()
				d := decisionFor(snapshot, p, game.DecideDiscuss, nil, e.MaxStatements)
				text, err := prov.Discuss(ctx, d)
				if err != nil || text == "" {
					text = agent.DefaultStatement
				}
				statements[i] = text
			}(i, p, g)
		}
		wg.Wait()
		for i, p := range alive {
			g = g.Append(game.LogEntry{
				Kind:       game.KindStatement,
				Actor:      p.Name,
				Visibility: game.VisPublic,
				Text:       fmt.Sprintf("[statement] %s: %s", p.Name, statements[i]),
			})
		}
	}
	return g
}

func (e *Engine) vote(ctx context.Context, g game.GameState) (game.GameState, error) {
	votes := make(map[string]string)
	var order []string
	for _, p := range g.Alive() {
		candidates := game.Candidates(g, p.Name, game.DecideVote)
		if len(candidates) == 0 {
			continue
		}
		target, err := e.choose(ctx, g, p, game.DecideVote, candidates)
		if err != nil {
			return g, err
		}
		votes[p.Name] = target
		order = append(order, p.Name)
	}
	for _, voter := range order {
		g = g.Append(game.LogEntry{
			Kind:       game.KindVote,
			Actor:      voter,
			Target:     votes[voter],
			Visibility: game.VisPublic,
			Text:       fmt.Sprintf("[vote] %s -> %s", voter, votes[voter]),
		})
	}
	return applyExecution(g, votes), nil
}

func (e *Engine) choose(ctx context.Context, g game.GameState, actor game.Player, kind game.DecisionKind, candidates []game.Player) (string, error) {
	return providerChoice(ctx, e.Providers, g, actor, kind, candidates, e.MaxStatements)
}

// applyExecution tallies, executes, and records the medium's reading of the
// executed player when a medium lives.
func applyExecution(g game.GameState, votes map[string]string) game.GameState {
	executed, count := TallyVotes(g, votes)
	if executed == "" {
		return g
	}
	victim, ok := g.Find(executed)
	if !ok || !victim.Alive() {
		return g
	}
	g = g.Kill(executed)
	g = g.Append(game.LogEntry{
		Kind:       game.KindExecution,
		Target:     executed,
		Visibility: game.VisPublic,
		Text:       fmt.Sprintf("[execution] %s was executed (%d votes)", executed, count),
	})
	for _, p := range g.Alive() {
		if p.Role != game.RoleMedium {
			continue
		}
		verdict := "was not a werewolf"
		if victim.Role == game.RoleWerewolf {
			verdict = "was a werewolf"
		}
		g = g.Append(game.LogEntry{
			Kind:       game.KindSystem,
			Actor:      p.Name,
			Target:     executed,
			Visibility: game.VisActor,
			Text:       fmt.Sprintf("[medium] %s learns that %s %s", p.Name, executed, verdict),
		})
		break
	}
	return g
}

// finish records the winner exactly once.
func finish(g game.GameState, winner game.Team) game.GameState {
	if g.Over() {
		return g
	}
	g = g.WithWinner(winner)
	return g.Append(game.LogEntry{
		Kind:       game.KindSystem,
		Visibility: game.VisPublic,
		Text:       fmt.Sprintf("=== game over: the %s team wins ===", winner),
	})
}
