package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SpanEvents is a set of span lifecycle transitions selected for emission.
// The zero value emits nothing.
type SpanEvents uint8

const (
	// SpanNew emits a record once when the span is created.
	SpanNew SpanEvents = 1 << iota
	// SpanEnter emits a record each time the span is activated.
	SpanEnter
	// SpanExit emits a record each time the span is deactivated.
	SpanExit
	// SpanClose emits a record once when the span ends, with its duration.
	SpanClose
)

const spanEventsAll = SpanNew | SpanEnter | SpanExit | SpanClose

var spanEventNames = map[SpanEvents]string{
	SpanNew:   "new",
	SpanEnter: "enter",
	SpanExit:  "exit",
	SpanClose: "close",
}

// Has reports whether every transition in ev is selected.
func (e SpanEvents) Has(ev SpanEvents) bool {
	return e&ev == ev && ev != 0
}

func (e SpanEvents) String() string {
	if e == 0 {
		return "none"
	}
	var names []string
	for _, ev := range []SpanEvents{SpanNew, SpanEnter, SpanExit, SpanClose} {
		if e&ev != 0 {
			names = append(names, spanEventNames[ev])
		}
	}
	return strings.Join(names, ",")
}

// ParseSpanEvents builds the transition set from configuration strings.
// Duplicates collapse (set semantics); unknown names are rejected.
func ParseSpanEvents(names []string) (SpanEvents, error) {
	var events SpanEvents
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "new":
			events |= SpanNew
		case "enter":
			events |= SpanEnter
		case "exit":
			events |= SpanExit
		case "close":
			events |= SpanClose
		default:
			return 0, fmt.Errorf("unknown span event %q", name)
		}
	}
	return events, nil
}

// Span lifecycle states. Legal transitions:
// created -> active -> inactive -> (active | closed).
type spanState int32

const (
	spanCreated spanState = iota
	spanActive
	spanInactive
	spanClosed
)

// Span is a logical unit of work whose lifecycle transitions can be logged.
// Safe for concurrent use; out-of-order transitions (Exit before Enter,
// Enter after Close, a doubled Close) are ignored rather than trusted.
type Span struct {
	name    string
	id      string
	svc     *Service
	events  SpanEvents
	started time.Time

	mu    sync.Mutex
	state spanState
}

// Span starts a named span. When span events are enabled the span carries a
// generated correlation identifier and emits the "new" transition if
// selected. With events disabled the span only tracks state and the record
// path is never entered.
func (s *Service) Span(name string) *Span {
	sp := &Span{
		name:    name,
		svc:     s,
		started: time.Now(),
	}
	if s != nil && s.isInitialized.Load() {
		sp.events = s.spanEvents
	}
	if sp.events != 0 {
		sp.id = NewID()
	}
	sp.emit(SpanNew, 0)
	return sp
}

// ID returns the span's correlation identifier. Empty when span events are
// disabled.
func (sp *Span) ID() string {
	return sp.id
}

// Name returns the span's name.
func (sp *Span) Name() string {
	return sp.name
}

// Enter activates the span and emits the "enter" transition if selected.
// Legal from the created and inactive states only; otherwise a no-op.
func (sp *Span) Enter() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.state != spanCreated && sp.state != spanInactive {
		return
	}
	sp.state = spanActive
	sp.emit(SpanEnter, 0)
}

// Exit deactivates the span and emits the "exit" transition if selected.
// Legal from the active state only, so enter/exit always balance.
func (sp *Span) Exit() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.state != spanActive {
		return
	}
	sp.state = spanInactive
	sp.emit(SpanExit, 0)
}

// Close ends the span, emitting the "close" transition with the span's
// duration. Closing an active span performs the balancing exit first.
// Safe to call multiple times; only the first call emits.
func (sp *Span) Close() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.state == spanClosed {
		return
	}
	if sp.state == spanActive {
		sp.emit(SpanExit, 0)
	}
	sp.state = spanClosed
	sp.emit(SpanClose, time.Since(sp.started))
}

// emit writes a lifecycle record when the transition is selected. The guard
// is a plain bit test so disabled span events cost no allocation here.
// Records are written under sp.mu (creation aside, before the span is
// shared) so their order always matches the state transitions.
func (sp *Span) emit(ev SpanEvents, dur time.Duration) {
	if sp.events&ev == 0 {
		return
	}

	e := logEventBuilder(sp.svc, zerolog.InfoLevel)
	e.Str(fieldSpan, sp.name).
		Str(fieldSpanID, sp.id).
		Str(fieldSpanEvent, spanEventNames[ev])
	if ev == SpanClose {
		e.Dur(fieldSpanDur, dur)
	}
	e.Send()
}
