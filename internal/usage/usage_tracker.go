// Package usage counts the tokens a session spends per model.
// Counters live in memory for the lifetime of one session.
package usage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type contextKey struct{}

type operationKey struct{}

// Tracker accumulates token usage.
type Tracker struct {
	mu    sync.Mutex
	stats Stats
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		stats: Stats{
			ByModel:     make(map[string]TokenCounts),
			ByOperation: make(map[string]TokenCounts),
		},
	}
}

// Track records one chat exchange. The operation comes from ctx
// (see WithOperation) and defaults to "chat".
func (t *Tracker) Track(ctx context.Context, model string, input, output int) {
	op := "chat"
	if v, ok := ctx.Value(operationKey{}).(string); ok && v != "" {
		op = v
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.Requests++
	t.stats.Total.Add(input, output)
	addToMap(t.stats.ByModel, model, input, output)
	addToMap(t.stats.ByOperation, op, input, output)
}

// Stats returns a copy of the counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.stats
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.ByOperation = copyTokenCountsMap(stats.ByOperation)
	return stats
}

// Summary renders the counters as a short table, one model per line.
func (t *Tracker) Summary() string {
	stats := t.Stats()
	if stats.Requests == 0 {
		return "No model requests yet."
	}

	models := make([]string, 0, len(stats.ByModel))
	for m := range stats.ByModel {
		models = append(models, m)
	}
	sort.Strings(models)

	var b strings.Builder
	fmt.Fprintf(&b, "Requests: %d  Tokens: %d in / %d out / %d total\n",
		stats.Requests, stats.Total.Input, stats.Total.Output, stats.Total.Total)
	for _, m := range models {
		c := stats.ByModel[m]
		fmt.Fprintf(&b, "  %-24s %8d in %8d out\n", m, c.Input, c.Output)
	}
	return strings.TrimRight(b.String(), "\n")
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}

// Context Helpers

// NewContext returns a new context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tracker from the context.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(contextKey{}).(*Tracker)
	return t
}

// WithOperation labels usage recorded under ctx.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}
