package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/moonlit-games/werewolf/internal/game"
)

// resolveNight advances through the fixed divine -> guard -> attack sequence
// and returns the state at the following morning. The guard target is held as
// a flag consumed only by a matching attack the same night; a blocked attack
// yields a public no-death entry instead of a kill.
func resolveNight(ctx context.Context, g game.GameState, choose chooser) (game.GameState, error) {
	if g.Over() {
		return g, game.ErrGameOver
	}
	g = g.WithPhase(game.PhaseNight)
	g = g.Append(game.LogEntry{
		Kind:       game.KindSystem,
		Visibility: game.VisPublic,
		Text:       fmt.Sprintf("--- night %d ---", g.Day),
	})
	return resolveNightOpened(ctx, g, choose)
}

// resolveNightOpened runs the night actions on a state whose night phase has
// already been opened and logged.
func resolveNightOpened(ctx context.Context, g game.GameState, choose chooser) (game.GameState, error) {
	var guarded, attacked string
	for _, action := range game.NightOrder {
		actor, ok := nightActor(g, action)
		if !ok {
			continue
		}
		candidates := game.Candidates(g, actor.Name, action.Decide())
		if len(candidates) == 0 {
			continue
		}
		target, err := choose(ctx, g, actor, action.Decide(), candidates)
		if err != nil {
			return g, err
		}
		if target == "" {
			continue
		}
		if err := game.CanPerform(g, actor.Name, target, action); err != nil {
			// Candidates are pre-filtered, so this is a decision-source bug;
			// reject rather than apply.
			log.Error().Err(err).Str("actor", actor.Name).Str("target", target).
				Str("action", string(action)).Msg("rejecting illegal night action")
			continue
		}

		switch action {
		case game.ActionDivine:
			t, _ := g.Find(target)
			// Madmen divine as human: the seer sees the werewolf role, not
			// the team.
			verdict := "is not a werewolf"
			if t.Role == game.RoleWerewolf {
				verdict = "is a werewolf"
			}
			g = g.Append(game.LogEntry{
				Kind:       game.KindNight,
				Action:     game.ActionDivine,
				Actor:      actor.Name,
				Target:     target,
				Visibility: game.VisActor,
				Text:       fmt.Sprintf("[divine] %s divined %s: %s", actor.Name, target, verdict),
			})
		case game.ActionGuard:
			guarded = target
			g = g.Append(game.LogEntry{
				Kind:       game.KindNight,
				Action:     game.ActionGuard,
				Actor:      actor.Name,
				Target:     target,
				Visibility: game.VisActor,
				Text:       fmt.Sprintf("[guard] %s guarded %s", actor.Name, target),
			})
		case game.ActionAttack:
			attacked = target
		}
	}

	if attacked != "" {
		if attacked == guarded {
			g = g.Append(game.LogEntry{
				Kind:       game.KindNight,
				Action:     game.ActionAttack,
				Visibility: game.VisPublic,
				Text:       "[attack] the attack was blocked; no one died tonight",
			})
		} else {
			g = g.Kill(attacked)
			g = g.Append(game.LogEntry{
				Kind:       game.KindNight,
				Action:     game.ActionAttack,
				Target:     attacked,
				Visibility: game.VisPublic,
				Text:       fmt.Sprintf("[attack] %s was attacked and died", attacked),
			})
		}
	}

	return g.NextDay(), nil
}
