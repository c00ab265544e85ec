package game

// Player is an entity identified by its unique name. Status only ever moves
// from alive to dead; players are never removed from the roster.
type Player struct {
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Status Status `json:"status"`
}

func (p Player) Alive() bool {
	return p.Status == StatusAlive
}

func (p Player) killed() Player {
	p.Status = StatusDead
	return p
}
