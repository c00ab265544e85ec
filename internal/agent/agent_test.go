package agent

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/cenkalti/backoff/v4"

	"github.com/moonlit-games/werewolf/internal/game"
)

// fakeClient replies with a fixed script, or fails every call.
type fakeClient struct {
	reply string
	err   error
	calls int
}

func (f *fakeClient) Chat(_ context.Context, _ string, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func candidates(names ...string) []game.Player {
	out := make([]game.Player, len(names))
	for i, n := range names {
		out[i] = game.Player{Name: n, Role: game.RoleVillager, Status: game.StatusAlive}
	}
	return out
}

func voteDecision(self string, cands ...string) Decision {
	return Decision{
		Kind:       game.DecideVote,
		Day:        1,
		Phase:      game.PhaseDay,
		Self:       game.Player{Name: self, Role: game.RoleVillager, Status: game.StatusAlive},
		Candidates: candidates(cands...),
	}
}

// noBackoff removes retry delays so failure paths run instantly.
func noBackoff(l *LLM) {
	l.policy = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxAttempts-1)
	}
}

func TestRandomPicksFromCandidates(t *testing.T) {
	r := NewRandom(rand.New(rand.NewSource(3)))
	d := voteDecision("self", "a", "b", "c")
	for i := 0; i < 50; i++ {
		got, err := r.Vote(context.Background(), d)
		if err != nil {
			t.Fatalf("Vote: %v", err)
		}
		if got != "a" && got != "b" && got != "c" {
			t.Fatalf("vote outside candidate set: %q", got)
		}
	}
}

func TestRandomIsDeterministicPerSeed(t *testing.T) {
	d := voteDecision("self", "a", "b", "c", "d")
	r1 := NewRandom(rand.New(rand.NewSource(9)))
	r2 := NewRandom(rand.New(rand.NewSource(9)))
	for i := 0; i < 20; i++ {
		v1, _ := r1.Vote(context.Background(), d)
		v2, _ := r2.Vote(context.Background(), d)
		if v1 != v2 {
			t.Fatalf("call %d diverged: %q vs %q", i, v1, v2)
		}
	}
}

func TestRandomErrorsOnEmptyCandidates(t *testing.T) {
	r := NewRandom(rand.New(rand.NewSource(1)))
	if _, err := r.Vote(context.Background(), voteDecision("self")); !errors.Is(err, game.ErrIllegalAction) {
		t.Fatalf("expected ErrIllegalAction, got %v", err)
	}
}

func TestRandomDiscussReturnsNonEmpty(t *testing.T) {
	r := NewRandom(rand.New(rand.NewSource(1)))
	s, err := r.Discuss(context.Background(), Decision{Kind: game.DecideDiscuss})
	if err != nil || s == "" {
		t.Fatalf("Discuss: %q, %v", s, err)
	}
}

func TestParseCandidateExactMatch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	got, ok := parseCandidate("  bob \n", candidates("alice", "bob"), rng)
	if !ok || got != "bob" {
		t.Fatalf("expected exact match bob, got %q ok=%v", got, ok)
	}
}

func TestParseCandidatePartialMatchPrefersCandidateOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	got, ok := parseCandidate("I vote for bob because alice trusts him",
		candidates("alice", "bob"), rng)
	if !ok || got != "alice" {
		t.Fatalf("expected first contained candidate alice, got %q ok=%v", got, ok)
	}
}

func TestParseCandidateFallsBackToRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cands := candidates("alice", "bob")
	got, ok := parseCandidate("no idea", cands, rng)
	if ok {
		t.Fatalf("fallback must report parsedOK=false")
	}
	if got != "alice" && got != "bob" {
		t.Fatalf("fallback outside candidate set: %q", got)
	}
}

func TestParseStatementSubstitutesDefault(t *testing.T) {
	if got := parseStatement("  \n "); got != DefaultStatement {
		t.Fatalf("expected default statement, got %q", got)
	}
	if got := parseStatement(" fine "); got != "fine" {
		t.Fatalf("expected trimmed statement, got %q", got)
	}
}

func TestLLMAlwaysFailingClientStillDecides(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	l := NewLLM(client, rand.New(rand.NewSource(5)))
	noBackoff(l)

	d := voteDecision("self", "a", "b", "c")
	got, err := l.Vote(context.Background(), d)
	if err != nil {
		t.Fatalf("failing client must not surface an error, got %v", err)
	}
	if got != "a" && got != "b" && got != "c" {
		t.Fatalf("fallback outside candidate set: %q", got)
	}
	if client.calls != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, client.calls)
	}
	if l.Degraded() != 1 {
		t.Fatalf("expected 1 degraded decision, got %d", l.Degraded())
	}
}

func TestLLMDiscussFallsBackToDefaultStatement(t *testing.T) {
	l := NewLLM(&fakeClient{err: errors.New("boom")}, rand.New(rand.NewSource(5)))
	noBackoff(l)
	got, err := l.Discuss(context.Background(), Decision{Kind: game.DecideDiscuss})
	if err != nil || got != DefaultStatement {
		t.Fatalf("expected default statement, got %q, %v", got, err)
	}
}

func TestLLMParsesScriptedReply(t *testing.T) {
	l := NewLLM(&fakeClient{reply: "b"}, rand.New(rand.NewSource(5)))
	noBackoff(l)
	got, err := l.Vote(context.Background(), voteDecision("self", "a", "b"))
	if err != nil || got != "b" {
		t.Fatalf("expected b, got %q, %v", got, err)
	}
	if l.Degraded() != 0 {
		t.Fatalf("clean parse must not count as degraded")
	}
}

func TestLLMEmptyCandidatesIsAnError(t *testing.T) {
	l := NewLLM(&fakeClient{reply: "x"}, rand.New(rand.NewSource(5)))
	noBackoff(l)
	if _, err := l.Vote(context.Background(), voteDecision("self")); !errors.Is(err, game.ErrIllegalAction) {
		t.Fatalf("expected ErrIllegalAction, got %v", err)
	}
}

func TestMetricsRecordsLatencyAndFallbacks(t *testing.T) {
	m := &Metrics{}
	l := NewLLM(&fakeClient{err: errors.New("down")}, rand.New(rand.NewSource(2)))
	noBackoff(l)
	p := WithMetrics(l, m)

	if _, err := p.Vote(context.Background(), voteDecision("self", "a", "b")); err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if _, err := p.Discuss(context.Background(), Decision{Kind: game.DecideDiscuss, Self: game.Player{Name: "self"}}); err != nil {
		t.Fatalf("Discuss: %v", err)
	}

	if m.Calls() != 2 {
		t.Fatalf("expected 2 samples, got %d", m.Calls())
	}
	if m.Fallbacks() != 2 {
		t.Fatalf("expected 2 fallbacks, got %d", m.Fallbacks())
	}
	for _, s := range m.Samples() {
		if s.Elapsed < 0 {
			t.Fatalf("negative latency recorded")
		}
	}
}

func TestMetricsDoesNotFlagRandomProvider(t *testing.T) {
	m := &Metrics{}
	p := WithMetrics(NewRandom(rand.New(rand.NewSource(2))), m)
	if _, err := p.Vote(context.Background(), voteDecision("self", "a")); err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if m.Fallbacks() != 0 {
		t.Fatalf("random provider must not record fallbacks")
	}
}

func TestForPlayersSkipsHumanSeat(t *testing.T) {
	players := candidates("a", "b", "c")
	providers := ForPlayers(players, "b", nil, 11)
	if len(providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(providers))
	}
	if _, ok := providers["b"]; ok {
		t.Fatalf("human seat must not get a provider")
	}
	for _, name := range []string{"a", "c"} {
		if _, ok := providers[name].(*Random); !ok {
			t.Fatalf("nil client should yield random providers, got %T", providers[name])
		}
	}
}

func TestForPlayersIsDeterministicPerSeed(t *testing.T) {
	players := candidates("a", "b", "c")
	d := voteDecision("x", "p", "q", "r")
	p1 := ForPlayers(players, "", nil, 11)
	p2 := ForPlayers(players, "", nil, 11)
	for _, name := range []string{"a", "b", "c"} {
		for i := 0; i < 10; i++ {
			v1, _ := p1[name].Vote(context.Background(), d)
			v2, _ := p2[name].Vote(context.Background(), d)
			if v1 != v2 {
				t.Fatalf("provider %s diverged on call %d", name, i)
			}
		}
	}
}
