package logging

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanCfg(t *testing.T, enabled bool, events ...string) Config {
	t.Helper()
	cfg := validConfig(t)
	cfg.Level = "info"
	cfg.EnableSpanEvents = enabled
	cfg.SpanEvents = events
	return cfg
}

func spanEventsOf(entries []logEntry) []string {
	var out []string
	for _, entry := range entries {
		if ev, ok := entry[fieldSpanEvent].(string); ok {
			out = append(out, ev)
		}
	}
	return out
}

func TestParseSpanEvents(t *testing.T) {
	t.Run("full set", func(t *testing.T) {
		events, err := ParseSpanEvents([]string{"new", "enter", "exit", "close"})
		require.NoError(t, err)
		assert.Equal(t, spanEventsAll, events)
		assert.True(t, events.Has(SpanNew|SpanClose))
		assert.False(t, SpanEvents(0).Has(SpanNew))
	})

	t.Run("empty set is valid", func(t *testing.T) {
		events, err := ParseSpanEvents(nil)
		require.NoError(t, err)
		assert.Equal(t, SpanEvents(0), events)
		assert.Equal(t, "none", events.String())
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		events, err := ParseSpanEvents([]string{"new", "new", "close", "NEW"})
		require.NoError(t, err)
		assert.Equal(t, SpanNew|SpanClose, events)
		assert.Equal(t, "new,close", events.String())
	})

	t.Run("unknown name rejected", func(t *testing.T) {
		_, err := ParseSpanEvents([]string{"begin"})
		require.Error(t, err)
	})
}

func TestSpan_PolicySubsets(t *testing.T) {
	cases := []struct {
		name   string
		events []string
		want   []string
	}{
		{"all", []string{"new", "enter", "exit", "close"}, []string{"new", "enter", "exit", "close"}},
		{"new and close", []string{"new", "close"}, []string{"new", "close"}},
		{"enter and exit", []string{"enter", "exit"}, []string{"enter", "exit"}},
		{"close only", []string{"close"}, []string{"close"}},
		{"empty", nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, buf := newCaptureService(t, spanCfg(t, true, tc.events...))
			defer svc.Close()

			sp := svc.Span("op")
			sp.Enter()
			sp.Exit()
			sp.Close()

			assert.Equal(t, tc.want, spanEventsOf(decodeEntries(t, buf)))
		})
	}
}

func TestSpan_DisabledEmitsNothing(t *testing.T) {
	// Master toggle off beats a non-empty selection.
	svc, buf := newCaptureService(t, spanCfg(t, false, "new", "enter", "exit", "close"))
	defer svc.Close()

	sp := svc.Span("quiet")
	sp.Enter()
	sp.Exit()
	sp.Close()

	assert.Empty(t, decodeEntries(t, buf))
	assert.Empty(t, sp.ID())
}

func TestSpan_BalancedEnterExit(t *testing.T) {
	svc, buf := newCaptureService(t, spanCfg(t, true, "new", "enter", "exit", "close"))
	defer svc.Close()

	sp := svc.Span("balanced")
	sp.Exit()  // ignored: not active yet
	sp.Enter()
	sp.Enter() // ignored: already active
	sp.Exit()
	sp.Exit() // ignored: already inactive
	sp.Enter()
	sp.Close() // active at close: balancing exit precedes close
	sp.Enter() // ignored: closed
	sp.Close() // ignored: closed

	got := spanEventsOf(decodeEntries(t, buf))
	assert.Equal(t, []string{"new", "enter", "exit", "enter", "exit", "close"}, got)

	var enters, exits int
	for _, ev := range got {
		switch ev {
		case "enter":
			enters++
		case "exit":
			exits++
		}
	}
	assert.Equal(t, enters, exits)
}

// Scenario from the bootstrap contract: level info, span events {new, close},
// one info record inside the span yields exactly new / record / close.
func TestSpan_NewRecordCloseOrdering(t *testing.T) {
	svc, buf := newCaptureService(t, spanCfg(t, true, "new", "close"))
	defer svc.Close()

	sp := svc.Span("request")
	svc.InfoWith().Str("step", "handle").Msg("handled")
	sp.Close()

	entries := decodeEntries(t, buf)
	require.Len(t, entries, 3)

	assert.Equal(t, "new", entries[0][fieldSpanEvent])
	assert.Equal(t, "request", entries[0][fieldSpan])

	assert.Equal(t, "handled", entries[1]["message"])
	assert.NotContains(t, entries[1], fieldSpanEvent)

	assert.Equal(t, "close", entries[2][fieldSpanEvent])
	assert.Contains(t, entries[2], fieldSpanDur)

	// Both lifecycle records carry the same correlation id.
	require.Len(t, sp.ID(), DefaultIDLength)
	assert.Equal(t, sp.ID(), entries[0][fieldSpanID])
	assert.Equal(t, sp.ID(), entries[2][fieldSpanID])
}

func TestSpan_BelowLevelEmitsNothing(t *testing.T) {
	cfg := spanCfg(t, true, "new", "close")
	cfg.Level = "warn" // span events emit at info
	svc, buf := newCaptureService(t, cfg)
	defer svc.Close()

	sp := svc.Span("filtered")
	sp.Close()

	assert.Empty(t, decodeEntries(t, buf))
}

// syncBuffer is a goroutine-safe capture writer for concurrency tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) entries(t *testing.T) []logEntry {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var entries []logEntry
	dec := json.NewDecoder(bytes.NewReader(b.buf.Bytes()))
	for dec.More() {
		var entry logEntry
		require.NoError(t, dec.Decode(&entry))
		entries = append(entries, entry)
	}
	return entries
}

// Concurrent Enter/Exit on one span must never let an exit record reach the
// writer before its matching enter record.
func TestSpan_ConcurrentTransitions(t *testing.T) {
	buf := &syncBuffer{}
	svc := NewService(spanCfg(t, true, "enter", "exit"))
	svc.output = buf
	require.NoError(t, svc.Initialize())
	defer svc.Close()

	sp := svc.Span("contended")
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			sp.Enter()
			sp.Exit()
		}
	}()
	for i := 0; i < 100; i++ {
		sp.Enter()
		sp.Exit()
	}
	<-done
	sp.Close()

	depth := 0
	for i, ev := range spanEventsOf(buf.entries(t)) {
		switch ev {
		case "enter":
			require.Equal(t, 0, depth, "enter while already active at record %d", i)
			depth++
		case "exit":
			require.Equal(t, 1, depth, "exit without prior enter at record %d", i)
			depth--
		}
	}
	assert.Equal(t, 0, depth)
}
