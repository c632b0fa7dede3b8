package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/client/policy"
)

// runTask drives op to a terminal state, records it locally and saves the
// result.
func (a *App) runTask(ctx context.Context, op models.Operation) error {
	if _, err := policy.Validate(op); err != nil {
		return err
	}

	if prev, err := a.records.Previous(ctx, op.Payload); err != nil {
		a.log.Debug(ctx, "looking up previous runs", "error", err)
	} else if len(prev) > 0 {
		a.printf("Note: %s was already processed %s.\n", op.Payload.Name, humanize.Time(prev[0].FinishedAt))
	}

	ctrl := a.newController()
	r := newRenderer(a.out)
	remove := ctrl.Observe(r.Render)
	defer remove()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Submit(ctx, op); err != nil {
		return err
	}

	final, err := ctrl.Wait(sigCtx)
	if err != nil {
		ctrl.Cancel()
		r.Done()
		return ErrCancelled
	}
	r.Done()

	if _, err := a.records.Record(ctx, final); err != nil {
		a.log.Warn(ctx, "recording task", "task_id", final.TaskID, "error", err)
	}

	if final.Phase == models.PhaseFailed {
		return errors.New(final.FailureReason)
	}

	path, err := a.download.Save(ctx, final)
	if err != nil {
		return fmt.Errorf("downloading result: %w", err)
	}

	if fi, err := os.Stat(path); err == nil {
		a.printf("Saved %s (%s)\n", path, humanize.IBytes(uint64(fi.Size())))
	} else {
		a.printf("Saved %s\n", path)
	}
	return nil
}
