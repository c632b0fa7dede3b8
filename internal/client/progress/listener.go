package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/fileconv/internal/client/client"
	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/common"
	"github.com/dmitrijs2005/fileconv/internal/logging"
)

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeStream Mode = "stream"
	ModePoll   Mode = "poll"
)

const (
	DefaultMaxReconnects  = 3
	DefaultReconnectDelay = time.Second
	DefaultPollInterval   = 2 * time.Second
	DefaultPollTimeout    = 5 * time.Minute
)

// Streamer opens the progress stream of a task.
type Streamer interface {
	OpenProgressStream(ctx context.Context, taskID string) (io.ReadCloser, error)
}

// FetchFunc retrieves the result handle of the subscribed task. It returns an
// error matching common.ErrNotReady while the task is still running.
type FetchFunc func(ctx context.Context) (string, error)

// Handlers receive the outcome of a subscription. OnEvent may be called any
// number of times, then exactly one of OnSuccess or OnFailure is called,
// unless the subscription is cancelled first. OnPolling is called once when
// the subscription starts polling for the result instead of streaming.
type Handlers struct {
	OnEvent   func(models.ProgressEvent)
	OnSuccess func(handle string)
	OnFailure func(err error)
	OnPolling func()
}

type Options struct {
	Mode           Mode
	MaxReconnects  int
	ReconnectDelay time.Duration
	PollInterval   time.Duration
	PollTimeout    time.Duration
}

func DefaultOptions() Options {
	return Options{
		Mode:           ModeAuto,
		MaxReconnects:  DefaultMaxReconnects,
		ReconnectDelay: DefaultReconnectDelay,
		PollInterval:   DefaultPollInterval,
		PollTimeout:    DefaultPollTimeout,
	}
}

type Listener struct {
	streamer Streamer
	opts     Options
	log      logging.Logger
}

func NewListener(s Streamer, opts Options, log logging.Logger) *Listener {
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Listener{streamer: s, opts: opts, log: log}
}

// Subscription is a running subscription.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	l      *Listener
	taskID string
	fetch  FetchFunc
	h      Handlers
	log    logging.Logger

	cancel  context.CancelFunc
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

// Subscribe starts following taskID in the background.
func (l *Listener) Subscribe(taskID string, fetch FetchFunc, h Handlers) Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &subscription{
		l:      l,
		taskID: taskID,
		fetch:  fetch,
		h:      h,
		log:    l.log.With("task_id", taskID),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer cancel()
		s.run(ctx)
	}()
	return s
}

func (s *subscription) Unsubscribe() {
	s.stopped.Store(true)
	s.cancel()
}

func (s *subscription) active(ctx context.Context) bool {
	return ctx.Err() == nil && !s.stopped.Load()
}

func (s *subscription) event(ctx context.Context, ev models.ProgressEvent) {
	if s.active(ctx) && s.h.OnEvent != nil {
		s.h.OnEvent(ev)
	}
}

func (s *subscription) polling(ctx context.Context) {
	if s.active(ctx) && s.h.OnPolling != nil {
		s.h.OnPolling()
	}
}

func (s *subscription) succeed(ctx context.Context, handle string) {
	s.once.Do(func() {
		if s.active(ctx) && s.h.OnSuccess != nil {
			s.h.OnSuccess(handle)
		}
	})
}

func (s *subscription) fail(ctx context.Context, err error) {
	s.once.Do(func() {
		if s.active(ctx) && s.h.OnFailure != nil {
			s.h.OnFailure(err)
		}
	})
}

// linearBackoff yields base, 2*base, 3*base ... and stops after maxRetries
// values.
func linearBackoff(base time.Duration, maxRetries int) retry.Backoff {
	var attempt int64
	next := retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * base, false
	})
	if maxRetries < 0 {
		maxRetries = 0
	}
	return retry.WithMaxRetries(uint64(maxRetries), next)
}

// sleep waits d or until ctx is done; it reports whether the wait completed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *subscription) run(ctx context.Context) {
	if s.l.opts.Mode == ModePoll {
		s.poll(ctx)
		return
	}
	s.stream(ctx)
}

type streamResult int

const (
	streamLost streamResult = iota
	streamDone
	streamUnsupported
)

func (s *subscription) stream(ctx context.Context) {
	opts := s.l.opts
	backoff := linearBackoff(opts.ReconnectDelay, opts.MaxReconnects)
	attempt := 0
	first := true

	for {
		res, progressed, err := s.streamOnce(ctx)
		if !s.active(ctx) || res == streamDone {
			return
		}

		if res == streamUnsupported && first {
			if opts.Mode == ModeAuto {
				s.log.Info(ctx, "progress stream unavailable, polling for result")
				s.poll(ctx)
				return
			}
			s.fail(ctx, fmt.Errorf("%w: progress stream unavailable", common.ErrChannel))
			return
		}
		first = false

		if progressed {
			backoff = linearBackoff(opts.ReconnectDelay, opts.MaxReconnects)
			attempt = 0
		}

		delay, stop := backoff.Next()
		if stop {
			s.log.Warn(ctx, "progress stream lost", "attempts", attempt, "error", err)
			s.fail(ctx, fmt.Errorf("%w: lost connection to progress updates after %d retries", common.ErrChannel, attempt))
			return
		}
		attempt++
		s.log.Warn(ctx, "progress stream interrupted, reconnecting", "attempt", attempt, "delay", delay, "error", err)

		if !sleep(ctx, delay) {
			return
		}
	}
}

type errorPayload struct {
	Error string `json:"error"`
}

// streamOnce follows one connection. progressed reports whether at least one
// event was decoded on it.
func (s *subscription) streamOnce(ctx context.Context) (res streamResult, progressed bool, err error) {
	body, err := s.l.streamer.OpenProgressStream(ctx, s.taskID)
	if errors.Is(err, client.ErrStreamUnsupported) {
		return streamUnsupported, false, err
	}
	if err != nil {
		return streamLost, false, err
	}
	defer body.Close()

	dec := NewDecoder(body)
	for {
		raw, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.New("stream closed by server")
			}
			return streamLost, progressed, err
		}
		if !s.active(ctx) {
			return streamDone, progressed, nil
		}

		switch raw.Name {
		case "error":
			var p errorPayload
			_ = json.Unmarshal([]byte(raw.Data), &p)
			s.fail(ctx, &RemoteError{Message: p.Error})
			return streamDone, true, nil

		case "timeout":
			s.fail(ctx, fmt.Errorf("%w: progress stream timed out", common.ErrTimeout))
			return streamDone, true, nil
		}

		var ev models.ProgressEvent
		if err := json.Unmarshal([]byte(raw.Data), &ev); err != nil {
			s.log.Warn(ctx, "malformed progress event", "data", raw.Data, "error", err)
			continue
		}
		progressed = true

		s.event(ctx, ev)

		switch ev.Phase {
		case models.ServerPhaseCompleted:
			_ = body.Close()
			s.retrieve(ctx)
			return streamDone, true, nil

		case models.ServerPhaseFailed:
			msg := ev.Error
			if msg == "" {
				msg = ev.Message
			}
			s.fail(ctx, &RemoteError{Message: msg})
			return streamDone, true, nil
		}
	}
}

// retrieve fetches the handle of a task the stream declared completed,
// retrying while the server still answers not-ready.
func (s *subscription) retrieve(ctx context.Context) {
	opts := s.l.opts
	b := retry.WithMaxRetries(uint64(max(opts.MaxReconnects, 0)), retry.NewConstant(opts.PollInterval))

	var handle string
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		h, err := s.fetch(ctx)
		if errors.Is(err, common.ErrNotReady) {
			s.log.Debug(ctx, "result not ready yet")
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}
		handle = h
		return nil
	})
	if !s.active(ctx) {
		return
	}
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.succeed(ctx, handle)
}

func (s *subscription) poll(ctx context.Context) {
	opts := s.l.opts
	if opts.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.PollTimeout)
		defer cancel()
	}

	s.polling(ctx)

	backoff := linearBackoff(opts.ReconnectDelay, opts.MaxReconnects)
	attempt := 0
	wait := opts.PollInterval

	for {
		if !sleep(ctx, wait) {
			s.pollStopped(ctx)
			return
		}
		wait = opts.PollInterval

		handle, err := s.fetch(ctx)
		if err == nil {
			// polling sees no stage events; report completion like the stream does
			s.event(ctx, models.ProgressEvent{Phase: models.ServerPhaseCompleted, Progress: 100})
			s.succeed(ctx, handle)
			return
		}
		if ctx.Err() != nil {
			s.pollStopped(ctx)
			return
		}

		if errors.Is(err, common.ErrNotReady) {
			s.log.Debug(ctx, "result not ready yet")
			backoff = linearBackoff(opts.ReconnectDelay, opts.MaxReconnects)
			attempt = 0
			continue
		}

		delay, stop := backoff.Next()
		if stop {
			s.log.Warn(ctx, "polling failed", "attempts", attempt, "error", err)
			s.fail(ctx, fmt.Errorf("%w: lost connection to progress updates after %d retries: %w", common.ErrChannel, attempt, err))
			return
		}
		attempt++
		s.log.Warn(ctx, "poll failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		wait = delay
	}
}

// pollStopped reports a timeout when the poll deadline, not Unsubscribe,
// ended polling.
func (s *subscription) pollStopped(ctx context.Context) {
	if s.stopped.Load() || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return
	}
	s.once.Do(func() {
		if !s.stopped.Load() && s.h.OnFailure != nil {
			s.h.OnFailure(fmt.Errorf("%w: no result after %s", common.ErrTimeout, s.l.opts.PollTimeout))
		}
	})
}

// RemoteError is a failure the server reported for the task. An empty
// Message means the server gave no reason.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "remote task failed"
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return common.ErrRemoteFailure
}
