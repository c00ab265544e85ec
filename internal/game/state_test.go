package game

import (
	"encoding/json"
	"testing"
)

func TestTransitionsLeaveReceiverUntouched(t *testing.T) {
	g := testState(alivePlayer("a", RoleVillager), alivePlayer("b", RoleWerewolf))

	killed := g.Kill("a")
	if !g.Players[0].Alive() {
		t.Fatalf("Kill mutated the original state")
	}
	if killed.Players[0].Alive() {
		t.Fatalf("Kill did not apply to the new state")
	}

	appended := g.Append(LogEntry{Kind: KindSystem, Visibility: VisPublic, Text: "x"})
	if len(g.Log) != 0 {
		t.Fatalf("Append mutated the original log")
	}
	if len(appended.Log) != 1 {
		t.Fatalf("Append did not apply")
	}

	night := g.WithPhase(PhaseNight)
	if g.Phase != PhaseDay || night.Phase != PhaseNight {
		t.Fatalf("WithPhase wrong: original %s, new %s", g.Phase, night.Phase)
	}
}

func TestKillUnknownOrDeadIsNoop(t *testing.T) {
	g := testState(deadPlayer("a", RoleVillager))
	if got := g.Kill("a"); got.Players[0].Status != StatusDead {
		t.Fatalf("killing a dead player changed status to %s", got.Players[0].Status)
	}
	if got := g.Kill("nobody"); len(got.Players) != 1 {
		t.Fatalf("killing an unknown player changed the roster")
	}
}

func TestWinnerIsImmutableOnceSet(t *testing.T) {
	g := testState(alivePlayer("a", RoleVillager))
	g = g.WithWinner(TeamVillage)
	if got := g.WithWinner(TeamWerewolf); got.Winner != TeamVillage {
		t.Fatalf("winner was overwritten to %s", got.Winner)
	}
}

func TestAppendDefaultsDayAndPhase(t *testing.T) {
	g := testState(alivePlayer("a", RoleVillager)).WithPhase(PhaseNight)
	g.Day = 3
	g = g.Append(LogEntry{Kind: KindSystem, Visibility: VisPublic, Text: "x"})
	e := g.Log[0]
	if e.Day != 3 || e.Phase != PhaseNight {
		t.Fatalf("entry defaults wrong: day %d phase %s", e.Day, e.Phase)
	}
}

func TestDivinedRecoversFromLog(t *testing.T) {
	g := testState(alivePlayer("seer", RoleSeer), alivePlayer("a", RoleVillager))
	g = g.Append(LogEntry{Kind: KindNight, Action: ActionDivine, Actor: "seer", Target: "a", Visibility: VisActor})
	g = g.Append(LogEntry{Kind: KindNight, Action: ActionGuard, Actor: "knight", Target: "a", Visibility: VisActor})
	got := g.Divined("seer")
	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected [a], got %v", got)
	}
	if got := g.Divined("a"); len(got) != 0 {
		t.Fatalf("non-seer should have no divinations, got %v", got)
	}
}

func TestGameStateJSONRoundTrip(t *testing.T) {
	g := testState(alivePlayer("a", RoleSeer), deadPlayer("b", RoleWerewolf))
	g.Day = 4
	g = g.Append(LogEntry{Kind: KindSystem, Visibility: VisPublic, Text: "x"})
	g = g.WithWinner(TeamVillage)

	b, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back GameState
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Day != 4 || back.Winner != TeamVillage || len(back.Players) != 2 || len(back.Log) != 1 {
		t.Fatalf("round trip lost data: %+v", back)
	}
	if back.Players[1].Status != StatusDead {
		t.Fatalf("status lost in round trip")
	}
}
