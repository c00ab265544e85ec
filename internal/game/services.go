package game

import (
	"fmt"
	"math/rand"
	"strings"
)

// AssignRoles shuffles the pool with the injected rng and binds one role per
// player, producing the initial GameState on day 1. The log is seeded with an
// actor-only role reveal per player and, when the pack has more than one
// member, a team-scoped entry telling the werewolves who they are.
func AssignRoles(names []string, pool []Role, rng *rand.Rand) (GameState, error) {
	if len(names) != len(pool) {
		return GameState{}, fmt.Errorf("%w: role pool size %d does not match player count %d",
			ErrConfiguration, len(pool), len(names))
	}
	if len(names) == 0 {
		return GameState{}, fmt.Errorf("%w: no players", ErrConfiguration)
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			return GameState{}, fmt.Errorf("%w: player names must be unique and non-empty", ErrConfiguration)
		}
		seen[n] = true
	}
	counts := make(map[Role]int, len(pool))
	for _, r := range pool {
		if !r.Valid() {
			return GameState{}, fmt.Errorf("%w: unknown role %q", ErrConfiguration, r)
		}
		counts[r]++
		if r.Unique() && counts[r] > 1 {
			return GameState{}, fmt.Errorf("%w: role %q may appear at most once", ErrConfiguration, r)
		}
	}

	shuffled := append([]Role(nil), pool...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	players := make([]Player, len(names))
	for i, name := range names {
		players[i] = Player{Name: name, Role: shuffled[i], Status: StatusAlive}
	}

	g := GameState{Players: players, Phase: PhaseDay, Day: 1}
	g = g.Append(LogEntry{Kind: KindSystem, Visibility: VisPublic, Text: "=== game start ==="})
	for _, p := range players {
		g = g.Append(LogEntry{
			Kind:       KindSystem,
			Actor:      p.Name,
			Visibility: VisActor,
			Text:       fmt.Sprintf("[role] %s: %s", p.Name, p.Role),
		})
	}
	if wolves := g.AliveWerewolves(); len(wolves) > 1 {
		names := make([]string, len(wolves))
		for i, w := range wolves {
			names[i] = w.Name
		}
		g = g.Append(LogEntry{
			Kind:       KindSystem,
			Visibility: VisTeam,
			Team:       TeamWerewolf,
			Text:       fmt.Sprintf("[pack] the werewolves are: %s", strings.Join(names, ", ")),
		})
	}
	return g, nil
}

// CheckVictory returns the winning team, if any. The village wins once no
// living werewolf remains; the werewolves win once the living non-werewolves
// are outnumbered or matched. A winner already recorded on the state is
// returned as is, so the check is idempotent.
func CheckVictory(g GameState) (Team, bool) {
	if g.Winner != "" {
		return g.Winner, true
	}
	wolves, rest := 0, 0
	for _, p := range g.Alive() {
		if p.Role == RoleWerewolf {
			wolves++
		} else {
			rest++
		}
	}
	if wolves == 0 {
		return TeamVillage, true
	}
	if rest <= wolves {
		return TeamWerewolf, true
	}
	return "", false
}

// CanPerform is the legality gate for night actions: the actor must be alive,
// its role must expose the action, the phase must be night, the target must
// be alive, and action-specific constraints must hold. A nil return means the
// action is legal.
func CanPerform(g GameState, actor, target string, kind NightAction) error {
	if g.Over() {
		return ErrGameOver
	}
	a, ok := g.Find(actor)
	if !ok || !a.Alive() {
		return fmt.Errorf("%w: actor %q is not alive", ErrIllegalAction, actor)
	}
	action, has := a.Role.NightAction()
	if !has || action != kind {
		return fmt.Errorf("%w: %s cannot %s", ErrIllegalAction, actor, kind)
	}
	if g.Phase != PhaseNight {
		return fmt.Errorf("%w: %s is a night action", ErrIllegalAction, kind)
	}
	t, ok := g.Find(target)
	if !ok || !t.Alive() {
		return fmt.Errorf("%w: target %q is not alive", ErrIllegalAction, target)
	}
	switch kind {
	case ActionDivine:
		if actor == target {
			return fmt.Errorf("%w: cannot divine yourself", ErrIllegalAction)
		}
		for _, n := range g.Divined(actor) {
			if n == target {
				return fmt.Errorf("%w: %s already divined %s", ErrIllegalAction, actor, target)
			}
		}
	case ActionGuard:
		if actor == target {
			return fmt.Errorf("%w: cannot guard yourself", ErrIllegalAction)
		}
	case ActionAttack:
		if t.Role == RoleWerewolf {
			return fmt.Errorf("%w: cannot attack a fellow werewolf", ErrIllegalAction)
		}
	}
	return nil
}

// Candidates returns the legal target set for a decision kind, in seat order.
// Discuss has no targets. The set is empty when the actor is dead or its role
// does not expose the decision.
func Candidates(g GameState, actor string, kind DecisionKind) []Player {
	a, ok := g.Find(actor)
	if !ok || !a.Alive() || kind == DecideDiscuss {
		return nil
	}
	if kind != DecideVote {
		action, has := a.Role.NightAction()
		if !has || action.Decide() != kind {
			return nil
		}
	}
	divined := g.Divined(actor)
	var out []Player
	for _, p := range g.Alive() {
		switch kind {
		case DecideVote, DecideGuard:
			if p.Name == actor {
				continue
			}
		case DecideDivine:
			if p.Name == actor || contains(divined, p.Name) {
				continue
			}
		case DecideAttack:
			if p.Role == RoleWerewolf {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
