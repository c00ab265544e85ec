package ws

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/moonlit-games/werewolf/internal/agent"
	"github.com/moonlit-games/werewolf/internal/config"
	"github.com/moonlit-games/werewolf/internal/engine"
	"github.com/moonlit-games/werewolf/internal/game"
	"github.com/moonlit-games/werewolf/internal/session"
	"github.com/moonlit-games/werewolf/internal/store"
)

type ConnCtx struct {
	Code  string
	Token string
}

// ProviderFactory builds the decision providers for the autonomous seats of a
// fresh game, leaving the human seat out.
type ProviderFactory func(players []game.Player, human string) map[string]agent.Provider

// Server drives interactive games over Socket.IO. Each connection plays one
// human seat; everyone else at the table is provider-driven.
type Server struct {
	SM      *session.Manager
	factory ProviderFactory
	gm      *engine.GameMaster
	db      *store.Store
}

// New builds the socket server. gm may be nil, which disables the daily board
// digest.
func New(sm *session.Manager, factory ProviderFactory, gm *engine.GameMaster, db *store.Store) *Server {
	return &Server{SM: sm, factory: factory, gm: gm, db: db}
}

// Mount attaches the Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// game:create
	io.OnEvent("/", "game:create", func(s socketio.Conn, payload struct {
		Players []string          `json:"players"`
		Roles   map[game.Role]int `json:"roles"`
		Human   string            `json:"human"`
		Seed    int64             `json:"seed"`
	}) map[string]any {
		g, err := newGame(payload.Players, payload.Roles, payload.Seed)
		if err != nil {
			return srv.err(s, "invalid_setup", err.Error())
		}
		providers := srv.factory(g.Players, payload.Human)
		it := engine.NewInteractive(g, providers, payload.Human)
		it.SetGameMaster(srv.gm)
		code, token := srv.SM.Create(it)
		s.SetContext(&ConnCtx{Code: code, Token: token})
		s.Join(code)
		log.Info().Str("sid", s.ID()).Str("code", code).Msg("game:create")
		srv.emitState(s, it)
		return map[string]any{"sessionCode": code, "token": token}
	})

	// game:resume (reconnection)
	io.OnEvent("/", "game:resume", func(s socketio.Conn, payload struct {
		SessionCode string `json:"sessionCode"`
		Token       string `json:"token"`
	}) map[string]any {
		sess, err := srv.SM.Authorized(payload.SessionCode, payload.Token)
		if err != nil {
			return srv.err(s, "session_not_found", err.Error())
		}
		s.SetContext(&ConnCtx{Code: payload.SessionCode, Token: payload.Token})
		s.Join(payload.SessionCode)
		log.Info().Str("sid", s.ID()).Str("code", payload.SessionCode).Msg("game:resume")
		_ = sess.Do(func(it *engine.Interactive) error {
			srv.emitState(s, it)
			return nil
		})
		return map[string]any{"ok": true}
	})

	// game:discuss advances the discussion up to the human's turn.
	io.OnEvent("/", "game:discuss", func(s socketio.Conn) map[string]any {
		return srv.withSession(s, func(it *engine.Interactive) (map[string]any, error) {
			messages, voteReady, err := it.AdvanceDiscussion(context.Background())
			if err != nil {
				return nil, err
			}
			srv.emitState(s, it)
			return map[string]any{"messages": messages, "voteReady": voteReady}, nil
		})
	})

	// game:statement submits the human's statement for the open round.
	io.OnEvent("/", "game:statement", func(s socketio.Conn, payload struct {
		Text string `json:"text"`
	}) map[string]any {
		return srv.withSession(s, func(it *engine.Interactive) (map[string]any, error) {
			messages, voteReady, err := it.SubmitStatement(context.Background(), payload.Text)
			if err != nil {
				return nil, err
			}
			srv.emitState(s, it)
			return map[string]any{"messages": messages, "voteReady": voteReady}, nil
		})
	})

	// game:vote closes the day's vote. An empty target runs AI seats only,
	// for days on which the human seat is dead.
	io.OnEvent("/", "game:vote", func(s socketio.Conn, payload struct {
		Target string `json:"target"`
	}) map[string]any {
		return srv.withSession(s, func(it *engine.Interactive) (map[string]any, error) {
			var votes map[string]string
			var winner game.Team
			var err error
			if payload.Target == "" {
				votes, winner, err = it.AutoVote(context.Background())
			} else {
				votes, winner, err = it.SubmitVote(context.Background(), payload.Target)
			}
			if err != nil {
				return nil, err
			}
			srv.afterTransition(s, it, winner)
			return map[string]any{"votes": votes, "winner": string(winner)}, nil
		})
	})

	// game:night opens the night phase and reports whether the human acts.
	io.OnEvent("/", "game:night", func(s socketio.Conn) map[string]any {
		return srv.withSession(s, func(it *engine.Interactive) (map[string]any, error) {
			humanActs, err := it.StartNight()
			if err != nil {
				return nil, err
			}
			candidates := make([]string, 0)
			for _, p := range it.NightCandidates() {
				candidates = append(candidates, p.Name)
			}
			action, _ := it.NightAction()
			srv.emitState(s, it)
			return map[string]any{
				"humanActs":  humanActs,
				"action":     string(action),
				"candidates": candidates,
			}, nil
		})
	})

	// game:resolveNight resolves the night. Empty target skips the human's
	// action.
	io.OnEvent("/", "game:resolveNight", func(s socketio.Conn, payload struct {
		Target string `json:"target"`
	}) map[string]any {
		return srv.withSession(s, func(it *engine.Interactive) (map[string]any, error) {
			messages, winner, err := it.ResolveNight(context.Background(), payload.Target)
			if err != nil {
				return nil, err
			}
			srv.afterTransition(s, it, winner)
			return map[string]any{"messages": messages, "winner": string(winner)}, nil
		})
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

// withSession resolves the connection's session and runs fn under its lock.
func (srv *Server) withSession(s socketio.Conn, fn func(it *engine.Interactive) (map[string]any, error)) map[string]any {
	ctx, _ := s.Context().(*ConnCtx)
	if ctx == nil || ctx.Code == "" {
		return srv.err(s, "no_session", "join or create a game first")
	}
	sess, err := srv.SM.Authorized(ctx.Code, ctx.Token)
	if err != nil {
		return srv.err(s, "session_not_found", err.Error())
	}
	var out map[string]any
	doErr := sess.Do(func(it *engine.Interactive) error {
		var err error
		out, err = fn(it)
		return err
	})
	if doErr != nil {
		return srv.err(s, "bad_request", doErr.Error())
	}
	return out
}

// afterTransition emits the new state and persists the game once it is over.
func (srv *Server) afterTransition(s socketio.Conn, it *engine.Interactive, winner game.Team) {
	srv.emitState(s, it)
	if winner == "" || srv.db == nil {
		return
	}
	ctx, _ := s.Context().(*ConnCtx)
	if ctx == nil {
		return
	}
	if err := srv.db.Save(context.Background(), ctx.Code, it.Game()); err != nil {
		log.Error().Err(err).Str("code", ctx.Code).Msg("failed to persist finished game")
	}
}

// emitState sends the human's view of the game to the connection. Roles of
// living players other than the viewer stay hidden.
func (srv *Server) emitState(s socketio.Conn, it *engine.Interactive) {
	g := it.Game()
	players := make([]map[string]any, 0, len(g.Players))
	for _, p := range g.Players {
		entry := map[string]any{"name": p.Name, "status": string(p.Status)}
		if p.Name == it.Human() || !p.Alive() || g.Over() {
			entry["role"] = string(p.Role)
		}
		players = append(players, entry)
	}
	payload := map[string]any{
		"phase":   string(g.Phase),
		"day":     g.Day,
		"round":   it.Round(),
		"players": players,
		"winner":  string(g.Winner),
		"log":     game.FormatLog(game.Project(g, it.Human())),
	}
	if board, ok := it.Board(); ok {
		payload["board"] = board
	}
	s.Emit("game:state", payload)
}

// newGame validates the requested table and deals roles. Validation runs
// before pool expansion so an unknown role name is reported as such rather
// than as a pool size mismatch.
func newGame(players []string, roles map[game.Role]int, seed int64) (game.GameState, error) {
	setup := config.Setup{Players: players, Roles: roles}
	if err := setup.Validate(); err != nil {
		return game.GameState{}, err
	}
	return game.AssignRoles(setup.Players, setup.Pool(), rngFor(seed))
}

// rngFor seeds a fresh rng, falling back to the clock when no seed is given.
func rngFor(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message}
}
