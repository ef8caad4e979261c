package lars

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// LogEvent is one item produced by follow-mode streaming. Err carries
// ErrSourceEnded when the backend session disappeared (normal
// termination of the stream) or a read failure otherwise; Line is set
// for ordinary output.
type LogEvent struct {
	// Line is one line of service output
	Line string
	// Err terminates the stream when non-nil
	Err error
}

// LogStreamer reads a service's captured output from its log sink.
// One-shot mode returns the current buffer; follow mode produces a
// live stream until the caller cancels or the backend session ends, at
// which point the stream terminates with ErrSourceEnded rather than a
// generic error.
type LogStreamer struct {
	// Paths resolves per-service log sinks
	Paths *Paths

	// LivenessPoll is how often follow mode re-checks the backend
	LivenessPoll time.Duration

	// Debounce coalesces rapid log writes into one read
	Debounce time.Duration

	runners map[RunnerKind]Runner
}

// StreamOption configures a LogStreamer
type StreamOption func(*LogStreamer)

// WithLivenessPoll sets the backend liveness check interval
func WithLivenessPoll(d time.Duration) StreamOption {
	return func(s *LogStreamer) {
		s.LivenessPoll = d
	}
}

// WithFollowDebounce sets the write-coalescing debounce
func WithFollowDebounce(d time.Duration) StreamOption {
	return func(s *LogStreamer) {
		s.Debounce = d
	}
}

// NewLogStreamer creates a LogStreamer over the given backends
func NewLogStreamer(paths *Paths, runners map[RunnerKind]Runner, opts ...StreamOption) *LogStreamer {
	s := &LogStreamer{
		Paths:        paths,
		LivenessPoll: DefaultLivenessPoll,
		Debounce:     DefaultFollowDebounce,
		runners:      runners,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dump returns the last n lines of the service's captured output. A
// service that never started has no sink; that reads as no output.
func (s *LogStreamer) Dump(svc *Service, n int) ([]string, error) {
	contents, err := os.ReadFile(s.Paths.LogPath(svc.ID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &OpError{Op: OpLogs, Name: svc.Name, Err: err}
	}

	lines := splitLines(string(contents))
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// Follow streams the service's output from the end of the current
// buffer (after an optional backlog of existing lines) until the
// context is cancelled, cleanup is called, or the backend session
// disappears. The returned cleanup stops the stream and waits for the
// goroutine to exit.
func (s *LogStreamer) Follow(ctx context.Context, svc *Service, backlog int) (<-chan LogEvent, func() error, error) {
	runner, ok := s.runners[svc.Runner]
	if !ok {
		return nil, nil, &OpError{Op: OpLogs, Name: svc.Name, Err: ErrUnknownRunner}
	}

	if err := os.MkdirAll(s.Paths.LogDir, DirMode); err != nil {
		return nil, nil, &OpError{Op: OpLogs, Name: svc.Name, Err: err}
	}

	logPath := s.Paths.LogPath(svc.ID)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_RDONLY, FileMode)
	if err != nil {
		return nil, nil, &OpError{Op: OpLogs, Name: svc.Name, Err: err}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = file.Close()
		return nil, nil, &OpError{Op: OpLogs, Name: svc.Name, Err: err}
	}

	// Watch the directory: the sink may be recreated under us
	if err := watcher.Add(s.Paths.LogDir); err != nil {
		_ = watcher.Close()
		_ = file.Close()
		return nil, nil, &OpError{Op: OpLogs, Name: svc.Name, Err: err}
	}

	ch := make(chan LogEvent, 64)

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
		_ = file.Close()
		close(ch)
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	tail := &tailState{reader: bufio.NewReader(file)}

	send := func(ev LogEvent) bool {
		select {
		case ch <- ev:
			return true
		case <-sctx.Stopping():
			return false
		}
	}

	sctx.Go(func(sctx *stopper.Context) error {
		// Backlog: replay up to backlog existing lines, leaving the
		// reader positioned at the end of the buffer. This runs on the
		// stream goroutine; the caller already holds the channel, so a
		// backlog larger than the channel buffer cannot wedge Follow.
		existing := tail.drain()
		if backlog > 0 && len(existing) > backlog {
			existing = existing[len(existing)-backlog:]
		} else if backlog == 0 {
			existing = nil
		}
		for _, line := range existing {
			if !send(LogEvent{Line: line}) {
				return nil
			}
		}

		var mu sync.Mutex
		var debouncer *time.Timer
		sctx.Defer(func() {
			mu.Lock()
			if debouncer != nil {
				debouncer.Stop()
			}
			mu.Unlock()
		})

		emitNew := func() {
			if sctx.IsStopping() {
				return
			}
			for _, line := range tail.drain() {
				if !send(LogEvent{Line: line}) {
					return
				}
			}
		}

		liveness := time.NewTicker(s.LivenessPoll)
		defer liveness.Stop()

		for {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != filepath.Clean(logPath) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				mu.Lock()
				if debouncer != nil {
					debouncer.Stop()
				}
				debouncer = time.AfterFunc(s.Debounce, emitNew)
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil && !sctx.IsStopping() {
					send(LogEvent{Err: &OpError{Op: OpLogs, Name: svc.Name, Err: err}})
					return nil
				}

			case <-liveness.C:
				alive, err := runner.IsAlive(ctx, svc)
				if err != nil {
					send(LogEvent{Err: err})
					return nil
				}
				if !alive {
					// Final drain, then signal normal end of stream
					for _, line := range tail.finish() {
						if !send(LogEvent{Line: line}) {
							return nil
						}
					}
					send(LogEvent{Err: &OpError{Op: OpLogs, Name: svc.Name, Err: ErrSourceEnded}})
					return nil
				}
			}
		}
	})

	return ch, cleanup, nil
}

// tailState accumulates partial trailing data so only complete lines
// are emitted while the sink is still being appended to.
type tailState struct {
	reader  *bufio.Reader
	pending strings.Builder
}

// drain reads everything currently available, returning complete lines
func (t *tailState) drain() []string {
	var lines []string
	for {
		chunk, err := t.reader.ReadString('\n')
		if chunk != "" {
			t.pending.WriteString(chunk)
			buffered := t.pending.String()
			if strings.HasSuffix(buffered, "\n") {
				lines = append(lines, strings.TrimRight(buffered, "\r\n"))
				t.pending.Reset()
			}
		}
		if err != nil {
			return lines
		}
	}
}

// finish drains remaining data, flushing an unterminated last line
func (t *tailState) finish() []string {
	lines := t.drain()
	if t.pending.Len() > 0 {
		lines = append(lines, t.pending.String())
		t.pending.Reset()
	}
	return lines
}

// splitLines splits captured output, dropping the trailing empty slot
// a final newline would otherwise produce
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
