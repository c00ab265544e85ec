package game

import (
	"errors"
	"math/rand"
	"testing"
)

func testState(players ...Player) GameState {
	return GameState{Players: players, Phase: PhaseDay, Day: 1}
}

func alivePlayer(name string, role Role) Player {
	return Player{Name: name, Role: role, Status: StatusAlive}
}

func deadPlayer(name string, role Role) Player {
	return Player{Name: name, Role: role, Status: StatusDead}
}

func TestAssignRolesDealsEveryRoleOnce(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	pool := []Role{RoleVillager, RoleVillager, RoleSeer, RoleWerewolf, RoleKnight}
	g, err := AssignRoles(names, pool, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("AssignRoles: %v", err)
	}
	if len(g.Players) != 5 {
		t.Fatalf("expected 5 players, got %d", len(g.Players))
	}
	counts := map[Role]int{}
	for i, p := range g.Players {
		if p.Name != names[i] {
			t.Fatalf("seat %d: expected %s, got %s", i, names[i], p.Name)
		}
		if !p.Alive() {
			t.Fatalf("player %s should start alive", p.Name)
		}
		counts[p.Role]++
	}
	if counts[RoleVillager] != 2 || counts[RoleSeer] != 1 || counts[RoleWerewolf] != 1 || counts[RoleKnight] != 1 {
		t.Fatalf("role counts off: %v", counts)
	}
	if g.Day != 1 || g.Phase != PhaseDay {
		t.Fatalf("expected day 1 day phase, got day %d phase %s", g.Day, g.Phase)
	}
}

func TestAssignRolesSeedsPrivateReveals(t *testing.T) {
	g, err := AssignRoles([]string{"a", "b", "c"},
		[]Role{RoleVillager, RoleWerewolf, RoleWerewolf},
		rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("AssignRoles: %v", err)
	}
	for _, p := range g.Players {
		view := Project(g, p.Name)
		found := false
		for _, e := range view {
			if e.Visibility == VisActor && e.Actor == p.Name {
				found = true
			}
			if e.Visibility == VisActor && e.Actor != p.Name {
				t.Fatalf("%s sees a reveal addressed to %s", p.Name, e.Actor)
			}
		}
		if !found {
			t.Fatalf("%s never saw their role reveal", p.Name)
		}
	}
	// With two werewolves the pack entry is visible to both and nobody else.
	for _, p := range g.Players {
		sawPack := false
		for _, e := range Project(g, p.Name) {
			if e.Visibility == VisTeam {
				sawPack = true
			}
		}
		if sawPack != (p.Role == RoleWerewolf) {
			t.Fatalf("pack entry visibility wrong for %s (%s)", p.Name, p.Role)
		}
	}
}

func TestAssignRolesRejectsBadInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		name  string
		names []string
		pool  []Role
	}{
		{"size mismatch", []string{"a", "b"}, []Role{RoleVillager}},
		{"empty", nil, nil},
		{"duplicate name", []string{"a", "a"}, []Role{RoleVillager, RoleVillager}},
		{"blank name", []string{"a", ""}, []Role{RoleVillager, RoleVillager}},
		{"unknown role", []string{"a"}, []Role{Role("jester")}},
		{"duplicate seer", []string{"a", "b"}, []Role{RoleSeer, RoleSeer}},
	}
	for _, tc := range cases {
		if _, err := AssignRoles(tc.names, tc.pool, rng); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("%s: expected ErrConfiguration, got %v", tc.name, err)
		}
	}
}

func TestAssignRolesDeterministicPerSeed(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	pool := []Role{RoleVillager, RoleSeer, RoleWerewolf, RoleKnight}
	g1, _ := AssignRoles(names, pool, rand.New(rand.NewSource(42)))
	g2, _ := AssignRoles(names, pool, rand.New(rand.NewSource(42)))
	for i := range g1.Players {
		if g1.Players[i].Role != g2.Players[i].Role {
			t.Fatalf("seat %d differs between identical seeds", i)
		}
	}
}

func TestCheckVictoryVillageWhenNoWolves(t *testing.T) {
	g := testState(
		alivePlayer("a", RoleVillager),
		deadPlayer("b", RoleWerewolf),
	)
	w, over := CheckVictory(g)
	if !over || w != TeamVillage {
		t.Fatalf("expected village win, got %q over=%v", w, over)
	}
}

func TestCheckVictoryWerewolfOnParity(t *testing.T) {
	g := testState(
		alivePlayer("a", RoleVillager),
		alivePlayer("b", RoleWerewolf),
		deadPlayer("c", RoleVillager),
	)
	w, over := CheckVictory(g)
	if !over || w != TeamWerewolf {
		t.Fatalf("expected werewolf win on parity, got %q over=%v", w, over)
	}
}

func TestCheckVictoryMadmanCountsAsVillagerForParity(t *testing.T) {
	// A madman is on the werewolf team but holds no werewolf role, so two
	// non-wolves against one wolf is not yet parity.
	g := testState(
		alivePlayer("a", RoleMadman),
		alivePlayer("b", RoleVillager),
		alivePlayer("c", RoleWerewolf),
	)
	if w, over := CheckVictory(g); over {
		t.Fatalf("game should continue, got winner %q", w)
	}
}

func TestCheckVictoryNotOverMidGame(t *testing.T) {
	g := testState(
		alivePlayer("a", RoleVillager),
		alivePlayer("b", RoleVillager),
		alivePlayer("c", RoleWerewolf),
	)
	if w, over := CheckVictory(g); over {
		t.Fatalf("game should continue, got winner %q", w)
	}
}

func TestCheckVictoryIdempotentOnceDecided(t *testing.T) {
	g := testState(alivePlayer("a", RoleVillager), alivePlayer("b", RoleWerewolf))
	g = g.WithWinner(TeamVillage)
	w, over := CheckVictory(g)
	if !over || w != TeamVillage {
		t.Fatalf("recorded winner must stick, got %q over=%v", w, over)
	}
}

func TestCanPerformRejectsIllegalNightActions(t *testing.T) {
	g := testState(
		alivePlayer("seer", RoleSeer),
		alivePlayer("knight", RoleKnight),
		alivePlayer("wolf", RoleWerewolf),
		alivePlayer("wolf2", RoleWerewolf),
		deadPlayer("ghost", RoleVillager),
	).WithPhase(PhaseNight)

	cases := []struct {
		name   string
		actor  string
		target string
		kind   NightAction
	}{
		{"dead actor", "ghost", "seer", ActionDivine},
		{"wrong role", "seer", "knight", ActionGuard},
		{"dead target", "seer", "ghost", ActionDivine},
		{"divine self", "seer", "seer", ActionDivine},
		{"guard self", "knight", "knight", ActionGuard},
		{"attack packmate", "wolf", "wolf2", ActionAttack},
		{"unknown actor", "nobody", "seer", ActionDivine},
	}
	for _, tc := range cases {
		if err := CanPerform(g, tc.actor, tc.target, tc.kind); !errors.Is(err, ErrIllegalAction) {
			t.Fatalf("%s: expected ErrIllegalAction, got %v", tc.name, err)
		}
	}

	if err := CanPerform(g, "seer", "wolf", ActionDivine); err != nil {
		t.Fatalf("legal divine rejected: %v", err)
	}
	if err := CanPerform(g.WithPhase(PhaseDay), "seer", "wolf", ActionDivine); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("divine by day should be illegal, got %v", err)
	}
	if err := CanPerform(g.WithWinner(TeamVillage), "seer", "wolf", ActionDivine); !errors.Is(err, ErrGameOver) {
		t.Fatalf("finished game should report ErrGameOver, got %v", err)
	}
}

func TestCanPerformRejectsRepeatDivination(t *testing.T) {
	g := testState(
		alivePlayer("seer", RoleSeer),
		alivePlayer("a", RoleVillager),
		alivePlayer("wolf", RoleWerewolf),
	).WithPhase(PhaseNight)
	g = g.Append(LogEntry{
		Kind: KindNight, Action: ActionDivine,
		Actor: "seer", Target: "a", Visibility: VisActor,
	})
	if err := CanPerform(g, "seer", "a", ActionDivine); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("repeat divination should be illegal, got %v", err)
	}
	if err := CanPerform(g, "seer", "wolf", ActionDivine); err != nil {
		t.Fatalf("fresh target rejected: %v", err)
	}
}

func TestCandidatesFollowSeatOrder(t *testing.T) {
	g := testState(
		alivePlayer("wolf", RoleWerewolf),
		alivePlayer("b", RoleVillager),
		alivePlayer("seer", RoleSeer),
		deadPlayer("d", RoleVillager),
	)
	votes := Candidates(g, "seer", DecideVote)
	want := []string{"wolf", "b"}
	if len(votes) != len(want) {
		t.Fatalf("expected %d vote candidates, got %d", len(want), len(votes))
	}
	for i, w := range want {
		if votes[i].Name != w {
			t.Fatalf("candidate %d: expected %s, got %s", i, w, votes[i].Name)
		}
	}

	attacks := Candidates(g, "wolf", DecideAttack)
	for _, c := range attacks {
		if c.Role == RoleWerewolf {
			t.Fatalf("attack candidates must exclude werewolves, got %s", c.Name)
		}
	}
	if got := Candidates(g, "b", DecideDivine); got != nil {
		t.Fatalf("villager should have no divine candidates, got %v", got)
	}
	if got := Candidates(g, "d", DecideVote); got != nil {
		t.Fatalf("dead player should have no candidates, got %v", got)
	}
}

func TestCandidatesExcludeAlreadyDivined(t *testing.T) {
	g := testState(
		alivePlayer("seer", RoleSeer),
		alivePlayer("a", RoleVillager),
		alivePlayer("wolf", RoleWerewolf),
	)
	g = g.Append(LogEntry{
		Kind: KindNight, Action: ActionDivine,
		Actor: "seer", Target: "a", Visibility: VisActor,
	})
	got := Candidates(g, "seer", DecideDivine)
	if len(got) != 1 || got[0].Name != "wolf" {
		t.Fatalf("expected only wolf left to divine, got %v", got)
	}
}
