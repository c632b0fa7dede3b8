package fakeapi

import (
	"time"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

// Frame is one unit written to the progress stream.
type Frame struct {
	// Event is the SSE event name; empty means the default message event.
	Event string
	// Data is JSON-encoded into the data field. Ignored when Comment is set.
	Data any
	// Comment, when not empty, is sent as a ": ..." heartbeat line.
	Comment string
	// Delay is waited before the frame is written.
	Delay time.Duration
	// Drop closes the connection instead of writing anything.
	Drop bool
}

// Script returns the frames streamed for one connection. attempt starts at 1
// and counts connections to the same job.
type Script func(job Job, attempt int) []Frame

func Progress(phase models.ServerPhase, progress int, message string) Frame {
	return Frame{Data: models.ProgressEvent{Phase: phase, Progress: progress, Message: message}}
}

func Heartbeat() Frame {
	return Frame{Comment: "heartbeat"}
}

func ErrorEvent(message string) Frame {
	return Frame{Event: "error", Data: map[string]string{"error": message}}
}

func TimeoutEvent() Frame {
	return Frame{Event: "timeout", Data: map[string]string{"error": "Progress stream timeout"}}
}

func DropConnection() Frame {
	return Frame{Drop: true}
}

// DefaultScript walks a job through every server phase and completes it.
func DefaultScript(job Job, _ int) []Frame {
	return []Frame{
		Progress(models.ServerPhaseUploadingOriginal, 100, "Original stored"),
		Heartbeat(),
		Progress(models.ServerPhaseConverting, 50, "Processing"),
		Progress(models.ServerPhaseUploadingResult, 100, "Storing result"),
		Progress(models.ServerPhaseCompleted, 100, "Completed"),
	}
}

// FailingScript fails the job during processing with message.
func FailingScript(message string) Script {
	return func(job Job, _ int) []Frame {
		return []Frame{
			Progress(models.ServerPhaseConverting, 10, "Processing"),
			{Data: models.ProgressEvent{Phase: models.ServerPhaseFailed, Message: message, Error: message}},
		}
	}
}

// FlakyScript drops the first failures connections, then plays next.
func FlakyScript(failures int, next Script) Script {
	return func(job Job, attempt int) []Frame {
		if attempt <= failures {
			return []Frame{DropConnection()}
		}
		return next(job, attempt)
	}
}
