package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/moonlit-games/werewolf/internal/agent"
	"github.com/moonlit-games/werewolf/internal/ai"
	"github.com/moonlit-games/werewolf/internal/ai/ollama"
	"github.com/moonlit-games/werewolf/internal/ai/openai"
	"github.com/moonlit-games/werewolf/internal/config"
	"github.com/moonlit-games/werewolf/internal/engine"
	"github.com/moonlit-games/werewolf/internal/game"
)

func main() {
	var (
		seed      = flag.Int64("seed", 0, "Fixed rng seed (0 uses the clock)")
		setupPath = flag.String("setup", "", "Path to a yaml table setup")
		games     = flag.Int("games", 1, "Number of games to run")
		provider  = flag.String("provider", "random", `Decision provider: "random", "openai" or "ollama"`)
		quiet     = flag.Bool("quiet", false, "Suppress per-game transcripts")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()
	cfg.Provider = *provider

	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	setup := config.DefaultSetup()
	if *setupPath != "" {
		var err error
		setup, err = config.LoadSetup(*setupPath)
		if err != nil {
			zerologlog.Fatal().Err(err).Str("path", *setupPath).Msg("loading setup")
		}
	}

	var client ai.Provider
	opts := ai.Options{Model: cfg.Model, Temperature: cfg.Temperature}
	switch cfg.Provider {
	case "openai":
		client = openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, opts)
	case "ollama":
		client = ollama.New(cfg.OllamaHost, opts)
	}

	base := *seed
	if base == 0 {
		base = time.Now().UnixNano()
	}

	metrics := &agent.Metrics{}
	wins := make(map[game.Team]int)
	for i := 0; i < *games; i++ {
		gameSeed := base + int64(i)
		g, err := game.AssignRoles(setup.Players, setup.Pool(), rand.New(rand.NewSource(gameSeed)))
		if err != nil {
			zerologlog.Fatal().Err(err).Msg("dealing roles")
		}
		providers := agent.ForPlayers(g.Players, "", client, gameSeed)
		for name, p := range providers {
			providers[name] = agent.WithMetrics(p, metrics)
		}
		eng := engine.New(providers)
		eng.MaxStatements = cfg.MaxStatements
		final, err := eng.Run(context.Background(), g)
		if err != nil {
			zerologlog.Fatal().Err(err).Int("game", i+1).Msg("running game")
		}
		wins[final.Winner]++
		if !*quiet {
			fmt.Println(game.FormatLog(game.ProjectPublic(final)))
			fmt.Println()
		}
		zerologlog.Info().Int("game", i+1).Int64("seed", gameSeed).
			Str("winner", string(final.Winner)).Int("days", final.Day).Msg("finished")
	}

	fmt.Printf("games: %d  village: %d  werewolf: %d\n",
		*games, wins[game.TeamVillage], wins[game.TeamWerewolf])
	if metrics.Calls() > 0 {
		fmt.Printf("provider calls: %d  fallbacks: %d  avg latency: %s\n",
			metrics.Calls(), metrics.Fallbacks(), metrics.AverageLatency())
	}
}
