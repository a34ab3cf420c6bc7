package workpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRowsVisitsEveryRowExactlyOnce(t *testing.T) {
	const height = 200
	var mu sync.Mutex
	seen := make(map[int]int)
	err := Rows(context.Background(), height, func(row int) error {
		mu.Lock()
		defer mu.Unlock()
		seen[row]++
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, height)
	for row, count := range seen {
		require.Equal(t, 1, count, "row %d visited %d times", row, count)
	}
}

func TestRowsZeroHeightIsNoop(t *testing.T) {
	called := false
	err := Rows(context.Background(), 0, func(row int) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.False(t, called)
}

func TestRowsPropagatesFirstError(t *testing.T) {
	sentinel := errors.New("boom")
	err := Rows(context.Background(), 50, func(row int) error {
		if row == 10 {
			return sentinel
		}
		return nil
	})
	require.ErrorIs(t, err, sentinel)
}

func TestRowsStopsDispatchingOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	err := Rows(ctx, 1000, func(row int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
