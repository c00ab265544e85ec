package game

import "errors"

var (
	// ErrConfiguration means the role pool does not match the player list.
	// Fatal, caught before a game starts.
	ErrConfiguration = errors.New("invalid game configuration")

	// ErrIllegalAction means a decision violates a legality constraint. The
	// engine rejects it rather than silently ignoring it.
	ErrIllegalAction = errors.New("illegal action")

	// ErrGameOver means a transition was attempted after a winner was set.
	ErrGameOver = errors.New("game is over")

	// ErrProviderFailure wraps transient model or transport faults. It is
	// recovered internally by retry-then-fallback and only ever logged.
	ErrProviderFailure = errors.New("provider failure")
)
