package preview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesRebuilds(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	rebuilt := make(chan struct{}, 10)

	w := NewWatcher(dir, 100*time.Millisecond, nil, func(context.Context) error {
		calls.Add(1)
		rebuilt <- struct{}{}
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "post.md"), []byte("edit"), 0o644))
	}

	select {
	case <-rebuilt:
	case <-time.After(3 * time.Second):
		t.Fatal("rebuild not triggered")
	}
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherSurvivesRebuildFailure(t *testing.T) {
	dir := t.TempDir()
	rebuilt := make(chan struct{}, 10)

	w := NewWatcher(dir, 20*time.Millisecond, nil, func(context.Context) error {
		rebuilt <- struct{}{}
		return errors.New("boom")
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 2; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "post.md"), []byte{byte(i)}, 0o644))
		select {
		case <-rebuilt:
		case <-time.After(3 * time.Second):
			t.Fatalf("rebuild %d not triggered", i)
		}
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope"), 0, nil, func(context.Context) error { return nil }, nil)
	err := w.Run(context.Background())
	require.Error(t, err)
}

func TestNewWatcherDefaults(t *testing.T) {
	w := NewWatcher(".", 0, nil, func(context.Context) error { return nil }, nil)
	assert.Equal(t, DefaultDebounce, w.debounce)
	require.NoError(t, w.Rebuild(context.Background()))
}
