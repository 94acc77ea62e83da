package logging

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	t.Run("default length", func(t *testing.T) {
		assert.Len(t, NewID(), DefaultIDLength)
	})

	t.Run("fixed alphabet", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			for _, ch := range NewID() {
				assert.Contains(t, idAlphabet, string(ch))
			}
		}
	})

	t.Run("consecutive calls differ", func(t *testing.T) {
		// Probabilistic, not guaranteed; a collision here is a 1-in-62^12
		// event worth investigating.
		assert.NotEqual(t, NewID(), NewID())
	})
}

func TestIDGenerator(t *testing.T) {
	t.Run("custom length", func(t *testing.T) {
		g := IDGenerator{Length: 20}
		assert.Len(t, g.Generate(), 20)
	})

	t.Run("prefix", func(t *testing.T) {
		g := IDGenerator{Prefix: "req_"}
		id := g.Generate()
		assert.True(t, strings.HasPrefix(id, "req_"))
		assert.Len(t, id, 4+DefaultIDLength)
	})

	t.Run("batch", func(t *testing.T) {
		g := IDGenerator{Prefix: "item_", Length: 8}
		ids := g.GenerateBatch(5)
		require.Len(t, ids, 5)
		for _, id := range ids {
			assert.True(t, strings.HasPrefix(id, "item_"))
			assert.Len(t, id, 5+8)
		}
	})

	t.Run("zero value matches NewID", func(t *testing.T) {
		assert.Len(t, IDGenerator{}.Generate(), DefaultIDLength)
	})
}

// 8 goroutines generating a tight loop of IDs: no data races, and within the
// sample no duplicates. The uniqueness check is empirical, not a contract.
func TestNewID_Concurrent(t *testing.T) {
	const (
		goroutines = 8
		perG       = 10000
	)

	results := make([][]string, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ids := make([]string, 0, perG)
			for i := 0; i < perG; i++ {
				ids = append(ids, NewID())
			}
			results[g] = ids
		}(g)
	}
	wg.Wait()

	seen := make(map[string]bool, goroutines*perG)
	for _, ids := range results {
		for _, id := range ids {
			require.Len(t, id, DefaultIDLength)
			assert.False(t, seen[id], "duplicate id %q within sample", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, goroutines*perG)
}

func TestCorrelationID(t *testing.T) {
	t.Run("absent from fresh context", func(t *testing.T) {
		_, ok := CorrelationIDFrom(context.Background())
		assert.False(t, ok)
	})

	t.Run("generated and stored", func(t *testing.T) {
		ctx, id := WithCorrelationID(context.Background())
		require.Len(t, id, DefaultIDLength)

		got, ok := CorrelationIDFrom(ctx)
		require.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("existing id is reused", func(t *testing.T) {
		ctx, id := WithCorrelationID(context.Background())
		ctx2, id2 := WithCorrelationID(ctx)
		assert.Equal(t, id, id2)
		assert.Equal(t, ctx, ctx2)
	})

	t.Run("nil context", func(t *testing.T) {
		_, ok := CorrelationIDFrom(nil) //nolint:staticcheck // nil tolerance is the point
		assert.False(t, ok)
	})
}
