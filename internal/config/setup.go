package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moonlit-games/werewolf/internal/game"
)

// Setup describes a table: who sits at it and which roles go in the pool.
type Setup struct {
	Players []string          `yaml:"players" json:"players"`
	Roles   map[game.Role]int `yaml:"roles" json:"roles"`
}

// DefaultSetup is a five-seat game with a single werewolf and a seer.
func DefaultSetup() Setup {
	return Setup{
		Players: []string{"Alice", "Bob", "Charlie", "Diana", "Eve"},
		Roles: map[game.Role]int{
			game.RoleVillager: 3,
			game.RoleSeer:     1,
			game.RoleWerewolf: 1,
		},
	}
}

// LoadSetup reads a table setup from a yaml file.
func LoadSetup(path string) (Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Setup{}, fmt.Errorf("reading setup: %w", err)
	}
	var s Setup
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Setup{}, fmt.Errorf("parsing setup: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Setup{}, err
	}
	return s, nil
}

// Validate checks the setup is internally consistent before roles are dealt.
func (s Setup) Validate() error {
	if len(s.Players) == 0 {
		return fmt.Errorf("%w: no players", game.ErrConfiguration)
	}
	total := 0
	for role, count := range s.Roles {
		if !role.Valid() {
			return fmt.Errorf("%w: unknown role %q", game.ErrConfiguration, role)
		}
		if count < 0 {
			return fmt.Errorf("%w: negative count for role %q", game.ErrConfiguration, role)
		}
		total += count
	}
	if total != len(s.Players) {
		return fmt.Errorf("%w: %d roles for %d players", game.ErrConfiguration, total, len(s.Players))
	}
	return nil
}

// Pool expands the role counts into a flat list, following the canonical role
// ordering so the same setup always yields the same pool.
func (s Setup) Pool() []game.Role {
	pool := make([]game.Role, 0, len(s.Players))
	for _, role := range game.PoolOrder {
		for i := 0; i < s.Roles[role]; i++ {
			pool = append(pool, role)
		}
	}
	return pool
}
