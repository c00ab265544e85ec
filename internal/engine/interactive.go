package engine

import (
	"context"
	"fmt"

	"github.com/moonlit-games/werewolf/internal/agent"
	"github.com/moonlit-games/werewolf/internal/game"
)

// Interactive advances a game one transition per call, with one
// human-controlled seat and providers for everyone else. It owns an exclusive
// reference to the current state; callers read snapshots via Game.
type Interactive struct {
	g             game.GameState
	providers     map[string]agent.Provider
	human         string
	order         []string
	round         int
	gm            *GameMaster
	board         *BoardState
	MaxStatements int

	// OnProgress fires before a provider decision, OnStatement after a
	// statement lands in the log.
	OnProgress  func(player string, action game.DecisionKind)
	OnStatement func(player, text string)
}

func NewInteractive(g game.GameState, providers map[string]agent.Provider, human string) *Interactive {
	order := make([]string, len(g.Players))
	for i, p := range g.Players {
		order[i] = p.Name
	}
	return &Interactive{
		g:             g,
		providers:     providers,
		human:         human,
		order:         order,
		MaxStatements: DefaultMaxStatements,
	}
}

// Game returns the current snapshot.
func (it *Interactive) Game() game.GameState { return it.g }

// Round is the discussion round in progress, zero between days.
func (it *Interactive) Round() int { return it.round }

// Human returns the controlled seat's name.
func (it *Interactive) Human() string { return it.human }

// SetGameMaster enables the daily board digest. A nil argument disables it.
func (it *Interactive) SetGameMaster(gm *GameMaster) { it.gm = gm }

// Board returns the most recent board digest, if one has been produced.
func (it *Interactive) Board() (BoardState, bool) {
	if it.board == nil {
		return BoardState{}, false
	}
	return *it.board, true
}

func (it *Interactive) humanPlayer() (game.Player, bool) {
	p, ok := it.g.Find(it.human)
	if !ok || !p.Alive() {
		return game.Player{}, false
	}
	return p, true
}

// aliveInOrder returns living players following the rotating speaking order.
func (it *Interactive) aliveInOrder() []game.Player {
	out := make([]game.Player, 0, len(it.order))
	for _, name := range it.order {
		if p, ok := it.g.Find(name); ok && p.Alive() {
			out = append(out, p)
		}
	}
	return out
}

// AdvanceDiscussion opens the next discussion round and produces AI
// statements up to the human's turn. When the human seat is dead the whole
// round runs; voteReady then reports whether all rounds are done. With a
// living human voteReady is always false and the caller must follow up with
// SubmitStatement.
func (it *Interactive) AdvanceDiscussion(ctx context.Context) (messages []string, voteReady bool, err error) {
	if it.g.Over() {
		return nil, false, game.ErrGameOver
	}
	if it.round == 0 {
		it.g = it.g.WithPhase(game.PhaseDay)
		it.g = it.g.Append(game.LogEntry{
			Kind:       game.KindSystem,
			Visibility: game.VisPublic,
			Text:       fmt.Sprintf("--- day %d ---", it.g.Day),
		})
		// From the second morning on there is history worth digesting.
		if it.gm != nil && it.g.Day >= 2 {
			it.progress("GM", summarizeAction)
			board := it.gm.Summarize(ctx, it.g)
			it.board = &board
		}
	}
	it.round++
	it.g = it.g.Append(game.LogEntry{
		Kind:       game.KindSystem,
		Visibility: game.VisPublic,
		Text:       fmt.Sprintf("[discussion] round %d", it.round),
	})

	ordered := it.aliveInOrder()
	if _, alive := it.humanPlayer(); !alive {
		messages = it.runStatements(ctx, ordered)
		if it.round >= discussionRounds(it.g.Day) {
			it.round = 0
			return messages, true, nil
		}
		return messages, false, nil
	}
	var before []game.Player
	for _, p := range ordered {
		if p.Name == it.human {
			break
		}
		before = append(before, p)
	}
	return it.runStatements(ctx, before), false, nil
}

// SubmitStatement records the human statement, runs the AI seats after it,
// and either opens the next round or reports the table ready to vote.
func (it *Interactive) SubmitStatement(ctx context.Context, text string) (messages []string, voteReady bool, err error) {
	if it.g.Over() {
		return nil, false, game.ErrGameOver
	}
	if human, alive := it.humanPlayer(); alive {
		it.g = it.g.Append(game.LogEntry{
			Kind:       game.KindStatement,
			Actor:      human.Name,
			Visibility: game.VisPublic,
			Text:       fmt.Sprintf("[statement] %s: %s", human.Name, text),
		})
		messages = append(messages, fmt.Sprintf("%s: %s", human.Name, text))

		ordered := it.aliveInOrder()
		var after []game.Player
		seen := false
		for _, p := range ordered {
			if p.Name == it.human {
				seen = true
				continue
			}
			if seen {
				after = append(after, p)
			}
		}
		messages = append(messages, it.runStatements(ctx, after)...)
	}

	if it.round < discussionRounds(it.g.Day) {
		next, _, err := it.AdvanceDiscussion(ctx)
		if err != nil {
			return messages, false, err
		}
		return append(messages, next...), false, nil
	}
	it.round = 0
	return messages, true, nil
}

func (it *Interactive) runStatements(ctx context.Context, players []game.Player) []string {
	var messages []string
	for _, p := range players {
		prov, ok := it.providers[p.Name]
		if !ok {
			continue
		}
		it.progress(p.Name, game.DecideDiscuss)
		d := decisionFor(it.g, p, game.DecideDiscuss, nil, it.MaxStatements)
		text, err := prov.Discuss(ctx, d)
		if err != nil || text == "" {
			text = agent.DefaultStatement
		}
		it.g = it.g.Append(game.LogEntry{
			Kind:       game.KindStatement,
			Actor:      p.Name,
			Visibility: game.VisPublic,
			Text:       fmt.Sprintf("[statement] %s: %s", p.Name, text),
		})
		messages = append(messages, fmt.Sprintf("%s: %s", p.Name, text))
		if it.OnStatement != nil {
			it.OnStatement(p.Name, text)
		}
	}
	return messages
}

// SubmitVote records the human vote, collects AI votes, executes the
// plurality target, and reports a winner if the execution decided the game.
func (it *Interactive) SubmitVote(ctx context.Context, target string) (map[string]string, game.Team, error) {
	if it.g.Over() {
		return nil, "", game.ErrGameOver
	}
	votes := make(map[string]string)
	var order []string
	if human, alive := it.humanPlayer(); alive {
		if !memberOf(game.Candidates(it.g, human.Name, game.DecideVote), target) {
			return nil, "", fmt.Errorf("%w: %s is not a legal vote target", game.ErrIllegalAction, target)
		}
		votes[human.Name] = target
		order = append(order, human.Name)
	}
	return it.closeVote(ctx, votes, order)
}

// AutoVote runs the vote with AI seats only, for days on which the human is
// dead.
func (it *Interactive) AutoVote(ctx context.Context) (map[string]string, game.Team, error) {
	if it.g.Over() {
		return nil, "", game.ErrGameOver
	}
	return it.closeVote(ctx, make(map[string]string), nil)
}

func (it *Interactive) closeVote(ctx context.Context, votes map[string]string, order []string) (map[string]string, game.Team, error) {
	for _, p := range it.g.Alive() {
		if p.Name == it.human {
			continue
		}
		if _, ok := it.providers[p.Name]; !ok {
			continue
		}
		candidates := game.Candidates(it.g, p.Name, game.DecideVote)
		if len(candidates) == 0 {
			continue
		}
		it.progress(p.Name, game.DecideVote)
		target, err := providerChoice(ctx, it.providers, it.g, p, game.DecideVote, candidates, it.MaxStatements)
		if err != nil {
			return nil, "", err
		}
		votes[p.Name] = target
		order = append(order, p.Name)
	}
	for _, voter := range order {
		it.g = it.g.Append(game.LogEntry{
			Kind:       game.KindVote,
			Actor:      voter,
			Target:     votes[voter],
			Visibility: game.VisPublic,
			Text:       fmt.Sprintf("[vote] %s -> %s", voter, votes[voter]),
		})
	}
	it.g = applyExecution(it.g, votes)
	if w, ok := game.CheckVictory(it.g); ok {
		it.g = finish(it.g, w)
		return votes, w, nil
	}
	return votes, "", nil
}

// StartNight opens the night phase. It reports whether the human has a night
// action to submit; when false the caller should resolve immediately.
func (it *Interactive) StartNight() (bool, error) {
	if it.g.Over() {
		return false, game.ErrGameOver
	}
	it.g = it.g.WithPhase(game.PhaseNight)
	it.g = it.g.Append(game.LogEntry{
		Kind:       game.KindSystem,
		Visibility: game.VisPublic,
		Text:       fmt.Sprintf("--- night %d ---", it.g.Day),
	})
	return len(it.NightCandidates()) > 0, nil
}

// NightAction returns the human's night ability, if any.
func (it *Interactive) NightAction() (game.NightAction, bool) {
	human, alive := it.humanPlayer()
	if !alive {
		return game.ActionNone, false
	}
	return human.Role.NightAction()
}

// NightCandidates returns the human's legal night targets.
func (it *Interactive) NightCandidates() []game.Player {
	action, ok := it.NightAction()
	if !ok {
		return nil
	}
	return game.Candidates(it.g, it.human, action.Decide())
}

// ResolveNight resolves divine, guard and attack in order, using humanTarget
// for the human's action (empty to skip it) and providers for the rest. It
// returns the public messages of the night and a winner if one was decided.
func (it *Interactive) ResolveNight(ctx context.Context, humanTarget string) ([]string, game.Team, error) {
	if it.g.Over() {
		return nil, "", game.ErrGameOver
	}
	if humanTarget != "" && !memberOf(it.NightCandidates(), humanTarget) {
		return nil, "", fmt.Errorf("%w: %s is not a legal night target", game.ErrIllegalAction, humanTarget)
	}

	// The night phase header was already logged by StartNight, so resolve on
	// top of the current state without opening it twice.
	aliveBefore := make(map[string]bool)
	for _, p := range it.g.Alive() {
		aliveBefore[p.Name] = true
	}
	logMark := len(it.g.Log)

	choose := func(ctx context.Context, g game.GameState, actor game.Player, kind game.DecisionKind, candidates []game.Player) (string, error) {
		if actor.Name == it.human {
			return humanTarget, nil // empty skips the action
		}
		it.progress(actor.Name, kind)
		return providerChoice(ctx, it.providers, g, actor, kind, candidates, it.MaxStatements)
	}
	next, err := resolveNightOpened(ctx, it.g, choose)
	if err != nil {
		return nil, "", err
	}
	it.g = next

	var messages []string
	for _, e := range it.g.Log[logMark:] {
		if e.Visibility == game.VisPublic {
			messages = append(messages, e.Text)
		}
	}
	for _, p := range it.g.Players {
		if aliveBefore[p.Name] && !p.Alive() {
			it.order = rotateOrder(it.order, p.Name)
			break
		}
	}

	if w, ok := game.CheckVictory(it.g); ok {
		it.g = finish(it.g, w)
		return messages, w, nil
	}
	return messages, "", nil
}

// summarizeAction labels board-digest work in progress callbacks.
const summarizeAction = game.DecisionKind("summarize")

func (it *Interactive) progress(player string, action game.DecisionKind) {
	if it.OnProgress != nil {
		it.OnProgress(player, action)
	}
}
