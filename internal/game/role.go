package game

// Team is a coalition sharing a win condition.
type Team string

const (
	TeamVillage  Team = "village"
	TeamWerewolf Team = "werewolf"
)

// Phase of the day/night cycle.
type Phase string

const (
	PhaseDay   Phase = "day"
	PhaseNight Phase = "night"
)

// Status marks a player alive or dead. Dead players stay in the roster.
type Status string

const (
	StatusAlive Status = "alive"
	StatusDead  Status = "dead"
)

// NightAction is the kind of ability a role may use at night.
type NightAction string

const (
	ActionNone   NightAction = ""
	ActionDivine NightAction = "divine"
	ActionGuard  NightAction = "guard"
	ActionAttack NightAction = "attack"
)

// NightOrder is the fixed resolution sequence. The guard target must be known
// before the attack resolves so a successful guard negates it.
var NightOrder = []NightAction{ActionDivine, ActionGuard, ActionAttack}

// DecisionKind names one kind of player decision.
type DecisionKind string

const (
	DecideDiscuss DecisionKind = "discuss"
	DecideVote    DecisionKind = "vote"
	DecideDivine  DecisionKind = "divine"
	DecideGuard   DecisionKind = "guard"
	DecideAttack  DecisionKind = "attack"
)

// Decide maps a night action to its decision kind.
func (a NightAction) Decide() DecisionKind {
	return DecisionKind(a)
}

// Role determines a player's team and night ability.
type Role string

const (
	RoleVillager Role = "villager"
	RoleSeer     Role = "seer"
	RoleWerewolf Role = "werewolf"
	RoleKnight   Role = "knight"
	RoleMedium   Role = "medium"
	RoleMadman   Role = "madman"
)

type roleMeta struct {
	team   Team
	action NightAction
	unique bool
}

// Adding a role means adding a row here; nothing else in the engine branches
// on role names.
var roles = map[Role]roleMeta{
	RoleVillager: {team: TeamVillage},
	RoleSeer:     {team: TeamVillage, action: ActionDivine, unique: true},
	RoleWerewolf: {team: TeamWerewolf, action: ActionAttack},
	RoleKnight:   {team: TeamVillage, action: ActionGuard, unique: true},
	RoleMedium:   {team: TeamVillage, unique: true},
	RoleMadman:   {team: TeamWerewolf},
}

// PoolOrder is the canonical ordering used when expanding a role-count
// configuration into a pool.
var PoolOrder = []Role{RoleVillager, RoleSeer, RoleWerewolf, RoleKnight, RoleMedium, RoleMadman}

func (r Role) Valid() bool {
	_, ok := roles[r]
	return ok
}

// Team returns the role's coalition.
func (r Role) Team() Team {
	return roles[r].team
}

// NightAction returns the role's night ability, if any.
func (r Role) NightAction() (NightAction, bool) {
	m := roles[r]
	return m.action, m.action != ActionNone
}

// Unique reports whether at most one player may hold this role per game.
func (r Role) Unique() bool {
	return roles[r].unique
}
