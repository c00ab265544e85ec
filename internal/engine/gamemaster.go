package engine

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/moonlit-games/werewolf/internal/ai"
	"github.com/moonlit-games/werewolf/internal/game"
)

// BoardState is the structured daily digest handed to the interactive player
// from day 2 on. The roster, deaths and vote history are derived from the log;
// claims, contradictions, summaries and advice come from the analysis model
// and may be empty when no model is configured or the call degrades.
type BoardState struct {
	Alive           []string        `json:"alive"`
	Dead            []Death         `json:"dead"`
	VoteHistory     []DayVotes      `json:"voteHistory"`
	Claims          []RoleClaim     `json:"claims"`
	Contradictions  []string        `json:"contradictions"`
	PlayerSummaries []PlayerSummary `json:"playerSummaries"`
	RoleAdvice      []RoleAdvice    `json:"roleAdvice"`
}

// Death records who died, how, and on which day.
type Death struct {
	Name  string `json:"name"`
	Cause string `json:"cause"` // "execution" or "attack"
	Day   int    `json:"day"`
}

// DayVotes is one day's vote table and its outcome.
type DayVotes struct {
	Day      int               `json:"day"`
	Votes    map[string]string `json:"votes"`
	Executed string            `json:"executed"`
}

// RoleClaim is a role claim voiced in discussion, with any results the
// claimant attached to it.
type RoleClaim struct {
	Player      string        `json:"player"`
	ClaimedRole string        `json:"claimedRole"`
	Day         int           `json:"day"`
	Results     []ClaimResult `json:"results,omitempty"`
}

// ClaimResult is a divine or medium result attached to a claim.
type ClaimResult struct {
	Target string `json:"target"`
	Result string `json:"result"` // "white" (not a werewolf) or "black"
	Day    int    `json:"day"`
}

// PlayerSummary is a one-line reading of a living player's position.
type PlayerSummary struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// AdviceOption is one suggested move with its trade-off.
type AdviceOption struct {
	Action  string `json:"action"`
	Merit   string `json:"merit"`
	Demerit string `json:"demerit"`
}

// RoleAdvice suggests moves for one role given the public board.
type RoleAdvice struct {
	Role    string         `json:"role"`
	Options []AdviceOption `json:"options"`
}

// analysis is the model's share of the board.
type analysis struct {
	Claims          []RoleClaim     `json:"claims"`
	Contradictions  []string        `json:"contradictions"`
	PlayerSummaries []PlayerSummary `json:"playerSummaries"`
	RoleAdvice      []RoleAdvice    `json:"roleAdvice"`
}

const maxContradictions = 3

// maxAttempts is the call budget per digest: one call plus two retries.
const maxAttempts = 3

const gmSystemPrompt = "You are the game master of a werewolf game. Analyze the public " +
	"log and reply with a single JSON object holding four keys: " +
	`"claims" (role claims voiced in discussion, each {"player","claimedRole","day","results":[{"target","result","day"}]} ` +
	`with result "white" for not-a-werewolf and "black" for werewolf), ` +
	`"contradictions" (up to three strings naming logical conflicts between claims, statements and votes), ` +
	`"playerSummaries" (one {"name","summary"} per living player, one sentence each), and ` +
	`"roleAdvice" (per role, {"role","options":[{"action","merit","demerit"}]} with two or three options grounded in the board). ` +
	"Use only the public information you were given. Reply with JSON only, no prose."

// GameMaster produces the daily board digest: the deterministic share comes
// straight from the log, the analytic share from the model. A nil client or a
// degraded call yields the deterministic share alone; Summarize never fails.
type GameMaster struct {
	client ai.Provider

	// policy builds a fresh retry schedule per call. Overridable in tests.
	policy func() backoff.BackOff
}

func NewGameMaster(client ai.Provider) *GameMaster {
	return &GameMaster{
		client: client,
		policy: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = time.Second
			return backoff.WithMaxRetries(bo, maxAttempts-1)
		},
	}
}

// Summarize builds the board digest for the current morning.
func (gm *GameMaster) Summarize(ctx context.Context, g game.GameState) BoardState {
	board := extractBoard(g)
	a, ok := gm.analyze(ctx, g)
	if !ok {
		return board
	}
	if len(a.Contradictions) > maxContradictions {
		a.Contradictions = a.Contradictions[:maxContradictions]
	}
	board.Claims = a.Claims
	board.Contradictions = a.Contradictions
	board.PlayerSummaries = a.PlayerSummaries
	board.RoleAdvice = a.RoleAdvice
	return board
}

func (gm *GameMaster) analyze(ctx context.Context, g game.GameState) (analysis, bool) {
	if gm.client == nil {
		return analysis{}, false
	}
	var reply string
	op := func() error {
		var err error
		reply, err = gm.client.Chat(ctx, gmSystemPrompt, gmUserPrompt(g))
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(gm.policy(), ctx)); err != nil {
		log.Warn().Err(err).Msg("board analysis call failed, continuing without it")
		return analysis{}, false
	}
	var a analysis
	if err := json.Unmarshal([]byte(stripFences(reply)), &a); err != nil {
		log.Warn().Err(err).Str("reply", reply).Msg("unparseable board analysis, continuing without it")
		return analysis{}, false
	}
	return a, true
}

func gmUserPrompt(g game.GameState) string {
	names := make([]string, 0, len(g.Players))
	for _, p := range g.Alive() {
		names = append(names, p.Name)
	}
	var b strings.Builder
	b.WriteString("## Living players\n")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n\n## Public game log\n")
	b.WriteString(game.FormatLog(game.ProjectPublic(g)))
	return b.String()
}

// stripFences unwraps a ```json fenced reply; models often add the fence
// despite the JSON-only instruction.
func stripFences(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractBoard derives the deterministic board share from the structured log:
// the living roster, every death with its cause, and the vote table of each
// day that ended in an execution.
func extractBoard(g game.GameState) BoardState {
	board := BoardState{}
	for _, p := range g.Alive() {
		board.Alive = append(board.Alive, p.Name)
	}

	votes := make(map[string]string)
	votesDay := 0
	for _, e := range g.Log {
		switch {
		case e.Kind == game.KindVote:
			if e.Day != votesDay {
				votes = make(map[string]string)
				votesDay = e.Day
			}
			votes[e.Actor] = e.Target
		case e.Kind == game.KindExecution:
			board.Dead = append(board.Dead, Death{Name: e.Target, Cause: "execution", Day: e.Day})
			if len(votes) > 0 && e.Day == votesDay {
				board.VoteHistory = append(board.VoteHistory, DayVotes{
					Day:      e.Day,
					Votes:    votes,
					Executed: e.Target,
				})
				votes = make(map[string]string)
			}
		case e.Kind == game.KindNight && e.Action == game.ActionAttack && e.Target != "":
			board.Dead = append(board.Dead, Death{Name: e.Target, Cause: "attack", Day: e.Day})
		}
	}
	return board
}
