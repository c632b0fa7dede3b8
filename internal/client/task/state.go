package task

import (
	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

type event interface {
	isEvent()
}

type (
	submitted struct {
		op models.Operation
	}
	uploadProgressed struct {
		percent int
	}
	uploadAccepted struct {
		sub *models.Submission
	}
	channelProgressed struct {
		ev models.ProgressEvent
	}
	pollingStarted     struct{}
	retrievalStarted   struct{}
	retrievalCompleted struct {
		handle string
	}
	failed struct {
		reason string
	}
	cancelled struct{}
	reset     struct{}
)

func (submitted) isEvent()          {}
func (uploadProgressed) isEvent()   {}
func (uploadAccepted) isEvent()     {}
func (channelProgressed) isEvent()  {}
func (pollingStarted) isEvent()     {}
func (retrievalStarted) isEvent()   {}
func (retrievalCompleted) isEvent() {}
func (failed) isEvent()             {}
func (cancelled) isEvent()          {}
func (reset) isEvent()              {}

func initial() models.Task {
	return models.Task{Phase: models.PhaseIdle}
}

// advance raises overall progress to v, never past 99 and never backwards.
func advance(t *models.Task, v int) {
	t.OverallProgress = max(t.OverallProgress, min(v, 99))
}

// apply returns the task after e. ok is false when e does not apply to the
// task's current phase; the task is then returned unchanged.
func apply(t models.Task, e event, b Bands) (next models.Task, ok bool) {
	switch e := e.(type) {
	case submitted:
		return models.Task{Operation: e.op, Phase: models.PhaseUploading}, true

	case uploadProgressed:
		if t.Phase != models.PhaseUploading {
			return t, false
		}
		t.PhaseProgress = clamp(e.percent, 0, 100)
		advance(&t, b.Upload.Scale(e.percent))
		return t, true

	case uploadAccepted:
		if t.Phase != models.PhaseUploading || e.sub == nil {
			return t, false
		}
		if t.TaskID == "" {
			t.TaskID = e.sub.ID
		}
		t.Submission = e.sub
		t.Phase = models.PhaseProcessing
		t.PhaseProgress = 0
		advance(&t, b.Upload.Hi)
		return t, true

	case channelProgressed:
		if t.Phase != models.PhaseProcessing {
			return t, false
		}
		band, p, known := b.forStage(e.ev)
		if !known {
			return t, false
		}
		t.Stage = e.ev.Phase
		t.Message = e.ev.Message
		t.PhaseProgress = clamp(e.ev.Progress, 0, 100)
		advance(&t, band.Scale(p))
		return t, true

	case pollingStarted:
		if t.Phase != models.PhaseProcessing {
			return t, false
		}
		advance(&t, b.Processing.Lo)
		return t, true

	case retrievalStarted:
		if t.Phase != models.PhaseProcessing {
			return t, false
		}
		advance(&t, b.Retrieval.Lo)
		return t, true

	case retrievalCompleted:
		if t.Phase != models.PhaseProcessing || e.handle == "" {
			return t, false
		}
		t.Phase = models.PhaseCompleted
		t.PhaseProgress = 100
		t.OverallProgress = 100
		t.ResultHandle = e.handle
		t.FailureReason = ""
		return t, true

	case failed:
		if !t.Phase.Active() {
			return t, false
		}
		t.Phase = models.PhaseFailed
		t.OverallProgress = 0
		t.PhaseProgress = 0
		t.ResultHandle = ""
		t.FailureReason = e.reason
		return t, true

	case cancelled:
		if !t.Phase.Active() {
			return t, false
		}
		next := initial()
		next.Operation = t.Operation
		return next, true

	case reset:
		return initial(), true
	}
	return t, false
}
