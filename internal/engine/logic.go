package engine

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/moonlit-games/werewolf/internal/agent"
	"github.com/moonlit-games/werewolf/internal/game"
)

// chooser resolves one target decision for an actor. An empty target with a
// nil error means the decision was skipped (no one available to make it).
type chooser func(ctx context.Context, g game.GameState, actor game.Player, kind game.DecisionKind, candidates []game.Player) (string, error)

// TallyVotes returns the execution target and its vote count. Plurality wins;
// ties are broken deterministically by the lowest seat index among the tied
// targets.
func TallyVotes(g game.GameState, votes map[string]string) (string, int) {
	counts := make(map[string]int, len(votes))
	for _, target := range votes {
		counts[target]++
	}
	best, bestCount, bestSeat := "", 0, len(g.Players)
	for name, count := range counts {
		seat := g.Seat(name)
		if seat < 0 {
			continue
		}
		if count > bestCount || (count == bestCount && seat < bestSeat) {
			best, bestCount, bestSeat = name, count, seat
		}
	}
	return best, bestCount
}

// discussionRounds is 1 on the first day and 2 afterwards.
func discussionRounds(day int) int {
	if day == 1 {
		return 1
	}
	return 2
}

// nightActor returns the first living player in seat order whose role exposes
// the given action. With two werewolves, the first seat carries the attack.
func nightActor(g game.GameState, kind game.NightAction) (game.Player, bool) {
	for _, p := range g.Alive() {
		if a, ok := p.Role.NightAction(); ok && a == kind {
			return p, true
		}
	}
	return game.Player{}, false
}

// rotateOrder moves the speaking order to start just after the removed name,
// dropping the removed name itself.
func rotateOrder(order []string, removed string) []string {
	idx := -1
	for i, n := range order {
		if n == removed {
			idx = i
			break
		}
	}
	if idx < 0 {
		return order
	}
	rotated := make([]string, 0, len(order)-1)
	rotated = append(rotated, order[idx+1:]...)
	rotated = append(rotated, order[:idx]...)
	return rotated
}

func memberOf(candidates []game.Player, name string) bool {
	for _, c := range candidates {
		if c.Name == name {
			return true
		}
	}
	return false
}

// providerChoice asks the actor's provider and enforces the candidate-set
// contract: an out-of-set target is rejected and re-queried once, then the
// lowest seat is taken.
func providerChoice(ctx context.Context, providers map[string]agent.Provider, g game.GameState, actor game.Player, kind game.DecisionKind, candidates []game.Player, maxStatements int) (string, error) {
	prov, ok := providers[actor.Name]
	if !ok {
		log.Error().Str("player", actor.Name).Msg("no provider configured, taking lowest seat")
		return candidates[0].Name, nil
	}
	for attempt := 0; attempt < 2; attempt++ {
		d := decisionFor(g, actor, kind, candidates, maxStatements)
		target, err := agent.Choose(ctx, prov, d)
		if err != nil {
			return "", err
		}
		if memberOf(candidates, target) {
			return target, nil
		}
		log.Error().Str("player", actor.Name).Str("kind", string(kind)).Str("target", target).
			Msg("provider returned a target outside the candidate set, re-querying")
	}
	return candidates[0].Name, nil
}

// decisionFor assembles the provider context for one decision, bounding the
// statement history handed over.
func decisionFor(g game.GameState, p game.Player, kind game.DecisionKind, candidates []game.Player, maxStatements int) agent.Decision {
	return agent.Decision{
		Kind:       kind,
		Day:        g.Day,
		Phase:      g.Phase,
		Self:       p,
		Candidates: candidates,
		View:       game.ProjectRecent(g, p.Name, maxStatements),
	}
}
