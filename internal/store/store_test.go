package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/moonlit-games/werewolf/internal/game"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func finishedGame() game.GameState {
	g := game.GameState{
		Players: []game.Player{
			{Name: "a", Role: game.RoleVillager, Status: game.StatusAlive},
			{Name: "b", Role: game.RoleWerewolf, Status: game.StatusDead},
		},
		Phase: game.PhaseDay,
		Day:   3,
	}
	g = g.Append(game.LogEntry{Kind: game.KindSystem, Visibility: game.VisPublic, Text: "=== game start ==="})
	return g.WithWinner(game.TeamVillage)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g := finishedGame()

	if err := s.Save(ctx, "g1", g); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Winner != game.TeamVillage || back.Day != 3 {
		t.Fatalf("loaded game wrong: winner %q day %d", back.Winner, back.Day)
	}
	if len(back.Players) != 2 || back.Players[1].Status != game.StatusDead {
		t.Fatalf("roster lost in round trip: %+v", back.Players)
	}
	if len(back.Log) != 1 {
		t.Fatalf("log lost in round trip: %d entries", len(back.Log))
	}
}

func TestSaveIsAnUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g := finishedGame()
	if err := s.Save(ctx, "g1", g); err != nil {
		t.Fatalf("Save: %v", err)
	}
	g.Day = 5
	if err := s.Save(ctx, "g1", g); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	back, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Day != 5 {
		t.Fatalf("upsert did not replace, day %d", back.Day)
	}
	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("upsert must keep one row, got %d", len(records))
	}
}

func TestLoadUnknownID(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReturnsSummaries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, "g1", finishedGame()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "g2", finishedGame()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r.Winner != string(game.TeamVillage) || r.Day != 3 {
			t.Fatalf("record wrong: %+v", r)
		}
	}
}
