package task

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/client/policy"
	"github.com/dmitrijs2005/fileconv/internal/client/progress"
	"github.com/dmitrijs2005/fileconv/internal/logging"
)

// ErrTaskActive is returned by Submit while a task is uploading or processing.
var ErrTaskActive = errors.New("a task is already in progress")

// Remote is the part of the conversion API the controller calls.
type Remote interface {
	Upload(ctx context.Context, op models.Operation, onProgress func(percent int)) (*models.Submission, error)
	FetchResultHandle(ctx context.Context, kind models.Kind, taskID string) (string, error)
}

// Subscriber follows the remote progress of a task.
type Subscriber interface {
	Subscribe(taskID string, fetch progress.FetchFunc, h progress.Handlers) progress.Subscription
}

type Validator func(models.Operation) (models.Format, error)

type Controller struct {
	remote    Remote
	listener  Subscriber
	validate  Validator
	bands     Bands
	pollBands Bands
	log       logging.Logger

	mu           sync.Mutex
	task         models.Task
	taskBands    Bands
	gen          uint64
	cancelUpload context.CancelFunc
	sub          progress.Subscription
	changed      chan struct{}
	observers    map[int]func(models.Task)
	nextObserver int
}

type Option func(*Controller)

func WithBands(b Bands) Option {
	return func(c *Controller) { c.bands = b }
}

// WithPollBands sets the profile a task switches to when its progress is
// polled instead of streamed. The default is PollBands.
func WithPollBands(b Bands) Option {
	return func(c *Controller) { c.pollBands = b }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithValidator replaces policy.Validate.
func WithValidator(v Validator) Option {
	return func(c *Controller) { c.validate = v }
}

func NewController(remote Remote, listener Subscriber, opts ...Option) *Controller {
	c := &Controller{
		remote:    remote,
		listener:  listener,
		validate:  policy.Validate,
		bands:     StreamBands,
		pollBands: PollBands,
		log:       logging.Nop(),
		task:      initial(),
		changed:   make(chan struct{}),
		observers: make(map[int]func(models.Task)),
	}
	for _, o := range opts {
		o(c)
	}
	c.taskBands = c.bands
	return c
}

// Current returns a snapshot of the task.
func (c *Controller) Current() models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.task
}

// Observe registers fn to receive every new snapshot, in transition order.
// fn runs with the controller locked and must not call back into it.
// The returned func removes the observer.
func (c *Controller) Observe(fn func(models.Task)) (remove func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Wait blocks until the task is no longer uploading or processing and
// returns that snapshot.
func (c *Controller) Wait(ctx context.Context) (models.Task, error) {
	for {
		c.mu.Lock()
		t, ch := c.task, c.changed
		c.mu.Unlock()

		if !t.Phase.Active() {
			return t, nil
		}
		select {
		case <-ctx.Done():
			return t, ctx.Err()
		case <-ch:
		}
	}
}

// Submit validates op and starts it in the background. Validation failures
// return a policy.ValidationError and leave the controller untouched; no
// network call is made. ctx is used for its values only, use Cancel to stop
// the task.
func (c *Controller) Submit(ctx context.Context, op models.Operation) error {
	if _, err := c.validate(op); err != nil {
		c.log.Debug(ctx, "operation rejected", "kind", op.Kind, "file", op.Payload.Name, "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.task.Phase.Active() {
		return ErrTaskActive
	}

	c.teardownLocked()
	c.gen++
	gen := c.gen
	c.taskBands = c.bands

	upCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelUpload = cancel

	c.applyLocked(ctx, submitted{op: op})
	go c.run(upCtx, gen, op)
	return nil
}

// Cancel aborts the upload or stops following the task and returns to idle.
// It does nothing unless a task is uploading or processing.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.task.Phase.Active() {
		return
	}
	c.gen++
	c.teardownLocked()
	c.applyLocked(context.Background(), cancelled{})
}

// Reset cancels any running work and clears the task. It is safe in any phase.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.teardownLocked()
	c.applyLocked(context.Background(), reset{})
}

func (c *Controller) run(ctx context.Context, gen uint64, op models.Operation) {
	sub, err := c.remote.Upload(ctx, op, func(p int) {
		c.dispatch(ctx, gen, uploadProgressed{percent: p})
	})
	if err != nil {
		c.dispatch(ctx, gen, failed{reason: failureReason(op.Kind, err)})
		return
	}

	switch sub.Status {
	case models.RemoteStatusFailed:
		c.dispatch(ctx, gen, uploadAccepted{sub: sub})
		c.dispatch(ctx, gen, failed{reason: failureReason(op.Kind, &progress.RemoteError{Message: sub.ErrorMessage})})

	case models.RemoteStatusCompleted:
		c.dispatch(ctx, gen, uploadAccepted{sub: sub})
		c.dispatch(ctx, gen, retrievalStarted{})

		handle, err := c.remote.FetchResultHandle(ctx, op.Kind, sub.ID)
		if err != nil {
			c.dispatch(ctx, gen, failed{reason: failureReason(op.Kind, err)})
			return
		}
		c.dispatch(ctx, gen, retrievalCompleted{handle: handle})

	default:
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen {
			return
		}
		c.applyLocked(ctx, uploadAccepted{sub: sub})
		c.subscribeLocked(ctx, gen, op.Kind, sub.ID)
	}
}

func (c *Controller) subscribeLocked(ctx context.Context, gen uint64, kind models.Kind, taskID string) {
	fetch := func(fctx context.Context) (string, error) {
		return c.remote.FetchResultHandle(fctx, kind, taskID)
	}

	c.sub = c.listener.Subscribe(taskID, fetch, progress.Handlers{
		OnEvent: func(ev models.ProgressEvent) {
			c.dispatch(ctx, gen, channelProgressed{ev: ev})
		},
		OnSuccess: func(handle string) {
			c.dispatch(ctx, gen, retrievalCompleted{handle: handle})
		},
		OnFailure: func(err error) {
			c.dispatch(ctx, gen, failed{reason: failureReason(kind, err)})
		},
		OnPolling: func() {
			c.dispatch(ctx, gen, pollingStarted{})
		},
	})
}

func (c *Controller) dispatch(ctx context.Context, gen uint64, e event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.log.Debug(ctx, "dropping stale task event", "event_gen", gen, "gen", c.gen)
		return
	}
	c.applyLocked(ctx, e)
}

func (c *Controller) applyLocked(ctx context.Context, e event) {
	prev := c.task
	if _, ok := e.(pollingStarted); ok && prev.Phase == models.PhaseProcessing {
		c.taskBands = c.pollBands
	}
	next, ok := apply(prev, e, c.taskBands)
	if !ok {
		c.log.Debug(ctx, "ignoring event for phase", "phase", prev.Phase)
		return
	}
	c.task = next

	if next.Phase != prev.Phase {
		switch next.Phase {
		case models.PhaseFailed:
			c.log.Warn(ctx, "task failed", "task_id", next.TaskID, "reason", next.FailureReason)
		default:
			c.log.Info(ctx, "task phase changed", "task_id", next.TaskID, "from", prev.Phase, "to", next.Phase)
		}
	}
	if next.Phase.Terminal() {
		c.teardownLocked()
	}

	for _, fn := range c.observers {
		fn(next)
	}
	close(c.changed)
	c.changed = make(chan struct{})
}

// teardownLocked releases the upload transfer and the subscription.
func (c *Controller) teardownLocked() {
	if c.cancelUpload != nil {
		c.cancelUpload()
		c.cancelUpload = nil
	}
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
}
