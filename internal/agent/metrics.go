package agent

import (
	"context"
	"sync"
	"time"

	"github.com/moonlit-games/werewolf/internal/game"
)

// Sample is one recorded provider call.
type Sample struct {
	Kind     game.DecisionKind
	Player   string
	Elapsed  time.Duration
	Fallback bool
}

// Metrics accumulates provider call samples for one game.
type Metrics struct {
	mu      sync.Mutex
	samples []Sample
}

func (m *Metrics) add(s Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, s)
}

// Samples returns a copy of everything recorded so far.
func (m *Metrics) Samples() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Sample(nil), m.samples...)
}

func (m *Metrics) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples)
}

func (m *Metrics) Fallbacks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.samples {
		if s.Fallback {
			n++
		}
	}
	return n
}

func (m *Metrics) AverageLatency() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range m.samples {
		total += s.Elapsed
	}
	return total / time.Duration(len(m.samples))
}

// WithMetrics decorates a provider, recording per-call latency and outcome
// without touching the decisions it forwards.
func WithMetrics(p Provider, m *Metrics) Provider {
	return &instrumented{inner: p, metrics: m}
}

type instrumented struct {
	inner   Provider
	metrics *Metrics
}

func (i *instrumented) record(d Decision, start time.Time) {
	fellBack := false
	if r, ok := i.inner.(fallbackReporter); ok {
		fellBack = r.tookFallback()
	}
	i.metrics.add(Sample{
		Kind:     d.Kind,
		Player:   d.Self.Name,
		Elapsed:  time.Since(start),
		Fallback: fellBack,
	})
}

func (i *instrumented) Discuss(ctx context.Context, d Decision) (string, error) {
	start := time.Now()
	defer i.record(d, start)
	return i.inner.Discuss(ctx, d)
}

func (i *instrumented) Vote(ctx context.Context, d Decision) (string, error) {
	start := time.Now()
	defer i.record(d, start)
	return i.inner.Vote(ctx, d)
}

func (i *instrumented) Divine(ctx context.Context, d Decision) (string, error) {
	start := time.Now()
	defer i.record(d, start)
	return i.inner.Divine(ctx, d)
}

func (i *instrumented) Guard(ctx context.Context, d Decision) (string, error) {
	start := time.Now()
	defer i.record(d, start)
	return i.inner.Guard(ctx, d)
}

func (i *instrumented) Attack(ctx context.Context, d Decision) (string, error) {
	start := time.Now()
	defer i.record(d, start)
	return i.inner.Attack(ctx, d)
}
