package session

import (
	"errors"
	"testing"

	"github.com/moonlit-games/werewolf/internal/engine"
	"github.com/moonlit-games/werewolf/internal/game"
)

func liveGame() *engine.Interactive {
	g := game.GameState{
		Players: []game.Player{
			{Name: "human", Role: game.RoleVillager, Status: game.StatusAlive},
			{Name: "wolf", Role: game.RoleWerewolf, Status: game.StatusAlive},
		},
		Phase: game.PhaseDay,
		Day:   1,
	}
	return engine.NewInteractive(g, nil, "human")
}

func TestCreateAndGet(t *testing.T) {
	m := NewManager()
	code, token := m.Create(liveGame())
	if len(code) != 5 {
		t.Fatalf("expected 5-char code, got %q", code)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	s, err := m.Get(code)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Code != code || s.Token != token {
		t.Fatalf("session fields wrong: %+v", s)
	}
	if got := s.Snapshot(); got.Day != 1 || len(got.Players) != 2 {
		t.Fatalf("snapshot wrong: %+v", got)
	}
}

func TestGetUnknownCode(t *testing.T) {
	m := NewManager()
	if _, err := m.Get("XXXXX"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuthorizedChecksToken(t *testing.T) {
	m := NewManager()
	code, token := m.Create(liveGame())
	if _, err := m.Authorized(code, token); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if _, err := m.Authorized(code, "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRemoveAndCodes(t *testing.T) {
	m := NewManager()
	code1, _ := m.Create(liveGame())
	code2, _ := m.Create(liveGame())
	if got := len(m.Codes()); got != 2 {
		t.Fatalf("expected 2 codes, got %d", got)
	}
	m.Remove(code1)
	codes := m.Codes()
	if len(codes) != 1 || codes[0] != code2 {
		t.Fatalf("expected only %s left, got %v", code2, codes)
	}
}

func TestDoSerializesAccess(t *testing.T) {
	m := NewManager()
	code, _ := m.Create(liveGame())
	s, _ := m.Get(code)
	err := s.Do(func(it *engine.Interactive) error {
		if it.Human() != "human" {
			t.Fatalf("wrong engine handed to Do")
		}
		return errors.New("sentinel")
	})
	if err == nil || err.Error() != "sentinel" {
		t.Fatalf("Do must return fn's error, got %v", err)
	}
}
