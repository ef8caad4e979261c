package lars

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, paths *Paths, svc *Service, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(paths.LogPath(svc.ID), []byte(contents), FileMode))
}

func TestDumpMissingSink(t *testing.T) {
	paths := testPaths(t)
	s := NewLogStreamer(paths, nil)

	lines, err := s.Dump(NewService("web", "true"), 10)
	require.NoError(t, err)
	assert.Nil(t, lines, "a service that never started has no output")
}

func TestDumpLastLines(t *testing.T) {
	paths := testPaths(t)
	svc := NewService("web", "true")
	writeLog(t, paths, svc, "one\ntwo\nthree\nfour\nfive\n")

	s := NewLogStreamer(paths, nil)

	lines, err := s.Dump(svc, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four", "five"}, lines)

	// n larger than the buffer returns everything
	lines, err = s.Dump(svc, 100)
	require.NoError(t, err)
	assert.Len(t, lines, 5)

	// n <= 0 also returns everything
	lines, err = s.Dump(svc, 0)
	require.NoError(t, err)
	assert.Len(t, lines, 5)
}

func TestDumpUnterminatedLastLine(t *testing.T) {
	paths := testPaths(t)
	svc := NewService("web", "true")
	writeLog(t, paths, svc, "done\npartial")

	lines, err := NewLogStreamer(paths, nil).Dump(svc, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"done", "partial"}, lines)
}

func collectEvents(t *testing.T, ch <-chan LogEvent, timeout time.Duration) ([]string, error) {
	t.Helper()
	var lines []string
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return lines, nil
			}
			if ev.Err != nil {
				return lines, ev.Err
			}
			lines = append(lines, ev.Line)
		case <-deadline:
			t.Fatal("timed out waiting for log events")
		}
	}
}

func TestFollowEndsWhenSessionDies(t *testing.T) {
	paths := testPaths(t)
	mock := NewMockRunner(paths, RunnerTmux)
	runners := map[RunnerKind]Runner{RunnerTmux: mock}

	svc := NewService("web", "true")
	writeLog(t, paths, svc, "alpha\nbeta\n")

	s := NewLogStreamer(paths, runners,
		WithLivenessPoll(10*time.Millisecond),
		WithFollowDebounce(time.Millisecond),
	)

	// The service is not running, so the first liveness check ends the
	// stream after the backlog replay.
	ch, cleanup, err := s.Follow(context.Background(), svc, 10)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	lines, streamErr := collectEvents(t, ch, 5*time.Second)
	assert.Equal(t, []string{"alpha", "beta"}, lines)
	require.Error(t, streamErr)
	assert.ErrorIs(t, streamErr, ErrSourceEnded)
}

func TestFollowLargeBacklogDoesNotBlock(t *testing.T) {
	paths := testPaths(t)
	mock := NewMockRunner(paths, RunnerTmux)
	runners := map[RunnerKind]Runner{RunnerTmux: mock}

	// Well past the stream channel's buffer size
	svc := NewService("web", "true")
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "line %03d\n", i)
	}
	writeLog(t, paths, svc, sb.String())

	s := NewLogStreamer(paths, runners,
		WithLivenessPoll(10*time.Millisecond),
		WithFollowDebounce(time.Millisecond),
	)

	type followResult struct {
		ch      <-chan LogEvent
		cleanup func() error
		err     error
	}
	done := make(chan followResult, 1)
	go func() {
		ch, cleanup, err := s.Follow(context.Background(), svc, 200)
		done <- followResult{ch, cleanup, err}
	}()

	var res followResult
	select {
	case res = <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Follow did not return before the backlog was consumed")
	}
	require.NoError(t, res.err)
	defer func() { _ = res.cleanup() }()

	lines, streamErr := collectEvents(t, res.ch, 5*time.Second)
	require.Len(t, lines, 200)
	assert.Equal(t, "line 000", lines[0])
	assert.Equal(t, "line 199", lines[199])
	assert.ErrorIs(t, streamErr, ErrSourceEnded)
}

func TestFollowStreamsAppendedLines(t *testing.T) {
	paths := testPaths(t)
	mock := NewMockRunner(paths, RunnerTmux)
	runners := map[RunnerKind]Runner{RunnerTmux: mock}

	svc := NewService("web", "true")
	require.NoError(t, mock.Start(context.Background(), svc))
	writeLog(t, paths, svc, "existing\n")

	s := NewLogStreamer(paths, runners,
		WithLivenessPoll(20*time.Millisecond),
		WithFollowDebounce(time.Millisecond),
	)

	ch, cleanup, err := s.Follow(context.Background(), svc, 0)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	// Append after the stream is established
	f, err := os.OpenFile(paths.LogPath(svc.ID), os.O_APPEND|os.O_WRONLY, FileMode)
	require.NoError(t, err)
	_, err = f.WriteString("fresh line\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var got []string
	deadline := time.After(5 * time.Second)
	for len(got) == 0 {
		select {
		case ev := <-ch:
			require.NoError(t, ev.Err)
			got = append(got, ev.Line)
		case <-deadline:
			t.Fatal("timed out waiting for appended line")
		}
	}
	assert.Equal(t, []string{"fresh line"}, got, "backlog 0 skips existing lines")

	// Simulate the session dying; the stream should terminate cleanly
	mock.Kill(svc)
	_, streamErr := collectEvents(t, ch, 5*time.Second)
	if streamErr != nil {
		assert.True(t, errors.Is(streamErr, ErrSourceEnded))
	}
}

func TestFollowCleanupStopsStream(t *testing.T) {
	paths := testPaths(t)
	mock := NewMockRunner(paths, RunnerTmux)
	runners := map[RunnerKind]Runner{RunnerTmux: mock}

	svc := NewService("web", "true")
	require.NoError(t, mock.Start(context.Background(), svc))

	s := NewLogStreamer(paths, runners, WithLivenessPoll(time.Hour))

	ch, cleanup, err := s.Follow(context.Background(), svc, 0)
	require.NoError(t, err)

	require.NoError(t, cleanup())

	// The channel closes once the stream goroutine exits
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cleanup")
	}
}

func TestFollowUnknownRunner(t *testing.T) {
	paths := testPaths(t)
	s := NewLogStreamer(paths, map[RunnerKind]Runner{})

	_, _, err := s.Follow(context.Background(), NewService("web", "true"), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRunner)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a"}, splitLines("a"))
	assert.Equal(t, []string{"a"}, splitLines("a\n"))
	assert.Equal(t, []string{"a", "b"}, splitLines("a\r\nb\r\n"))
}
