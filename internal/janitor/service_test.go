package janitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/raine/platescan/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPruner struct {
	mu     sync.Mutex
	calls  int
	maxAge time.Duration
	err    error
}

func (p *countingPruner) PruneAnalysisCache(ctx context.Context, olderThan time.Duration) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.maxAge = olderThan
	return 1, p.err
}

func (p *countingPruner) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestRun_PrunesUntilCancelled(t *testing.T) {
	pruner := &countingPruner{}
	s := NewService(pruner).WithInterval(5 * time.Millisecond).WithMaxAge(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return pruner.count() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	pruner.mu.Lock()
	defer pruner.mu.Unlock()
	assert.Equal(t, time.Hour, pruner.maxAge)
}

func TestRun_ContinuesAfterError(t *testing.T) {
	pruner := &countingPruner{err: errors.New("database is locked")}
	s := NewService(pruner).WithInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	assert.Eventually(t, func() bool { return pruner.count() >= 2 }, time.Second, time.Millisecond)
}

func TestPrune_SQLiteStore(t *testing.T) {
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SetAnalysisCache(ctx, "k", &storage.CacheEntry{Analysis: "a"}))

	// A fresh entry survives the default age.
	NewService(store).prune(ctx)
	entry, err := store.GetAnalysisCache(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, entry)

	// A negative age puts the cutoff in the future.
	NewService(store).WithMaxAge(-time.Hour).prune(ctx)
	entry, err = store.GetAnalysisCache(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
