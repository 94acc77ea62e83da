package logging

import (
	"context"
	"math/rand"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// idAlphabet is the fixed alphanumeric alphabet for correlation identifiers.
const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// DefaultIDLength is the length of identifiers produced by NewID.
const DefaultIDLength = 12

// NewID returns a short random correlation identifier: 12 alphanumeric
// characters, safe to call from any goroutine. Uniqueness is probabilistic
// only; collisions are negligible at log-correlation scale but never
// guaranteed away, so do not use these as database keys.
func NewID() string {
	return randomID(DefaultIDLength)
}

// IDGenerator produces correlation identifiers with an optional prefix and
// custom length. The zero value behaves like NewID. Generators are stateless
// and safe to share across goroutines.
type IDGenerator struct {
	// Prefix is prepended verbatim to every identifier, e.g. "req_".
	Prefix string
	// Length is the random portion's length; zero means DefaultIDLength.
	Length int
}

// Generate returns one identifier.
func (g IDGenerator) Generate() string {
	n := g.Length
	if n <= 0 {
		n = DefaultIDLength
	}
	id := randomID(n)
	if g.Prefix != emptyString {
		return g.Prefix + id
	}
	return id
}

// GenerateBatch returns count identifiers.
func (g IDGenerator) GenerateBatch(count int) []string {
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, g.Generate())
	}
	return ids
}

func randomID(n int) string {
	id, err := gonanoid.Generate(idAlphabet, n)
	if err == nil {
		return id
	}
	// crypto/rand unavailable; degrade to the weaker source rather than
	// crash a logging path.
	b := make([]byte, n)
	for i := range b {
		b[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return string(b)
}

// correlationKeyType is a private type for context keys to avoid collisions.
type correlationKeyType string

const correlationKey correlationKeyType = "logging.correlation_id"

// WithCorrelationID returns a context carrying a correlation identifier and
// the identifier itself. An identifier already present is reused.
func WithCorrelationID(ctx context.Context) (context.Context, string) {
	if id, ok := CorrelationIDFrom(ctx); ok {
		return ctx, id
	}
	id := NewID()
	return context.WithValue(ctx, correlationKey, id), id
}

// CorrelationIDFrom extracts the correlation identifier from a context.
func CorrelationIDFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return emptyString, false
	}
	id, ok := ctx.Value(correlationKey).(string)
	return id, ok && id != emptyString
}
