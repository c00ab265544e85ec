package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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
	"github.com/moonlit-games/werewolf/internal/session"
	"github.com/moonlit-games/werewolf/internal/store"
	"github.com/moonlit-games/werewolf/internal/ws"
)

const version = "v1.0.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Werewolf - social deduction game server with AI players

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT              Port to listen on (default: 8080)
  PROVIDER          Decision provider: "random", "openai" or "ollama" (default: random)
  MODEL             Model for LLM providers (default: gpt-4o-mini)
  TEMPERATURE       Sampling temperature (default: 0.7)
  OPENAI_API_KEY    OpenAI API key (required for the openai provider)
  OPENAI_BASE_URL   Custom OpenAI API base URL (optional)
  OLLAMA_HOST       Ollama host URL (default: http://localhost:11434)
  SEED              Fixed rng seed, 0 uses the clock (default: 0)
  MAX_STATEMENTS    Statement history handed to providers (default: 20)
  DB_PATH           Sqlite database path (default: ./werewolf.db)

Examples:
  %s                Start server with random AI players
  %s --port 3000    Start server on port 3000
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("werewolf %s\n", version)
		return
	}

	// .env is optional
	_ = godotenv.Load()
	cfg := config.FromEnv()

	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		zerologlog.Info().Str("path", path).Int("status", status).Dur("dur", dur).Msg("http")
	})

	// Healthcheck
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		zerologlog.Fatal().Err(err).Str("path", cfg.DBPath).Msg("opening store")
	}
	defer db.Close()

	client := completionClient(cfg)
	factory := func(players []game.Player, human string) map[string]agent.Provider {
		return agent.ForPlayers(players, human, client, seedOrClock(cfg.Seed))
	}

	// Socket server for interactive play. The board digest needs a model, so
	// it stays off for the random provider.
	var gm *engine.GameMaster
	if client != nil {
		gm = engine.NewGameMaster(client)
	}
	sm := session.NewManager()
	sock := ws.New(sm, factory, gm, db)
	io := sock.Mount(r)
	defer io.Close()

	// Autonomous games over REST
	type createReq struct {
		Players []string          `json:"players"`
		Roles   map[game.Role]int `json:"roles"`
		Seed    int64             `json:"seed"`
	}
	r.POST("/api/games", func(c *gin.Context) {
		var req createReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
			return
		}
		setup := config.Setup{Players: req.Players, Roles: req.Roles}
		if len(setup.Players) == 0 {
			setup = config.DefaultSetup()
		}
		if err := setup.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		seed := seedOrClock(req.Seed)
		g, err := game.AssignRoles(setup.Players, setup.Pool(), rngFor(seed))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		eng := engine.New(agent.ForPlayers(g.Players, "", client, seed))
		eng.MaxStatements = cfg.MaxStatements
		final, err := eng.Run(c.Request.Context(), g)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		id := uuid.NewString()
		if err := db.Save(c.Request.Context(), id, final); err != nil {
			zerologlog.Error().Err(err).Str("id", id).Msg("failed to persist game")
		}
		c.JSON(http.StatusOK, gin.H{
			"id":     id,
			"winner": string(final.Winner),
			"days":   final.Day,
			"log":    game.FormatLog(game.ProjectPublic(final)),
		})
	})
	r.GET("/api/games", func(c *gin.Context) {
		records, err := db.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"games": records})
	})
	r.GET("/api/games/:id", func(c *gin.Context) {
		g, err := db.Load(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		viewer := c.Query("viewer")
		c.JSON(http.StatusOK, gin.H{
			"winner":  string(g.Winner),
			"day":     g.Day,
			"phase":   string(g.Phase),
			"players": g.Players,
			"log":     game.Project(g, viewer),
		})
	})

	zerologlog.Info().Str("port", port).Str("provider", cfg.Provider).Msg("listening")
	if err := r.Run(":" + port); err != nil {
		zerologlog.Fatal().Err(err).Msg("server stopped")
	}
}

// completionClient returns nil for the random provider, which makes every
// seat a seeded random player.
func completionClient(cfg config.Config) ai.Provider {
	opts := ai.Options{Model: cfg.Model, Temperature: cfg.Temperature}
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, opts)
	case "ollama":
		return ollama.New(cfg.OllamaHost, opts)
	default:
		return nil
	}
}

func seedOrClock(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

func rngFor(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
