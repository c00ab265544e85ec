package game

// GameState is the aggregate root. It is a value: every transition returns a
// new state and leaves the receiver untouched, so the previous snapshot stays
// valid and inspectable. Seat order is the creation order of Players and
// never changes.
type GameState struct {
	Players []Player   `json:"players"`
	Phase   Phase      `json:"phase"`
	Day     int        `json:"day"`
	Log     []LogEntry `json:"log"`
	Winner  Team       `json:"winner,omitempty"`
}

func (g GameState) clone() GameState {
	g.Players = append([]Player(nil), g.Players...)
	g.Log = append([]LogEntry(nil), g.Log...)
	return g
}

// Over reports whether a winner has been decided.
func (g GameState) Over() bool {
	return g.Winner != ""
}

// Find returns the player with the given name.
func (g GameState) Find(name string) (Player, bool) {
	for _, p := range g.Players {
		if p.Name == name {
			return p, true
		}
	}
	return Player{}, false
}

// Seat returns the seat index of the named player, or -1.
func (g GameState) Seat(name string) int {
	for i, p := range g.Players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Alive returns the living players in seat order.
func (g GameState) Alive() []Player {
	out := make([]Player, 0, len(g.Players))
	for _, p := range g.Players {
		if p.Alive() {
			out = append(out, p)
		}
	}
	return out
}

// AliveWerewolves returns the living players holding the werewolf role.
func (g GameState) AliveWerewolves() []Player {
	out := make([]Player, 0, 2)
	for _, p := range g.Alive() {
		if p.Role == RoleWerewolf {
			out = append(out, p)
		}
	}
	return out
}

// Append returns a state with the entry added. Day and phase default to the
// state's current values.
func (g GameState) Append(e LogEntry) GameState {
	if e.Day == 0 {
		e.Day = g.Day
	}
	if e.Phase == "" {
		e.Phase = g.Phase
	}
	g = g.clone()
	g.Log = append(g.Log, e)
	return g
}

// Kill returns a state with the named player marked dead. Killing an unknown
// or already dead player is a no-op.
func (g GameState) Kill(name string) GameState {
	i := g.Seat(name)
	if i < 0 || !g.Players[i].Alive() {
		return g
	}
	g = g.clone()
	g.Players[i] = g.Players[i].killed()
	return g
}

// WithPhase returns a state in the given phase.
func (g GameState) WithPhase(p Phase) GameState {
	g = g.clone()
	g.Phase = p
	return g
}

// NextDay returns the state at the following morning.
func (g GameState) NextDay() GameState {
	g = g.clone()
	g.Phase = PhaseDay
	g.Day++
	return g
}

// WithWinner returns a terminal state. Once set the winner never changes.
func (g GameState) WithWinner(t Team) GameState {
	if g.Winner != "" {
		return g
	}
	g = g.clone()
	g.Winner = t
	return g
}

// Divined returns the names the given seer has already divined, recovered
// from the canonical log.
func (g GameState) Divined(seer string) []string {
	var out []string
	for _, e := range g.Log {
		if e.Kind == KindNight && e.Action == ActionDivine && e.Actor == seer {
			out = append(out, e.Target)
		}
	}
	return out
}
