package cleanup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls atomic.Int32
	ids   []string
	err   error
}

func (f *fakeExpirer) Expire(context.Context) ([]string, error) {
	f.calls.Add(1)
	return f.ids, f.err
}

type fakeSweeper struct {
	calls atomic.Int32
	n     int
}

func (f *fakeSweeper) Sweep(context.Context) (int, error) {
	f.calls.Add(1)
	return f.n, nil
}

func TestRunOnce(t *testing.T) {
	sessions := &fakeExpirer{ids: []string{"a", "b"}}
	challenges := &fakeSweeper{n: 3}

	res := NewCleaner(sessions, challenges, time.Minute).RunOnce(context.Background())
	assert.Equal(t, Result{Sessions: 2, Challenges: 3}, res)
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	sessions := &fakeExpirer{err: errors.New("db down")}
	challenges := &fakeSweeper{n: 1}

	res := NewCleaner(sessions, challenges, time.Minute).RunOnce(context.Background())
	assert.Equal(t, Result{Challenges: 1}, res)
	assert.EqualValues(t, 1, challenges.calls.Load())
}

func TestRunStopsWithContext(t *testing.T) {
	sessions := &fakeExpirer{}
	challenges := &fakeSweeper{}
	c := NewCleaner(sessions, challenges, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return sessions.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop")
	}
}
