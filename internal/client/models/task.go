package models

// Phase is the client-side lifecycle stage of a Task.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseUploading  Phase = "uploading"
	PhaseProcessing Phase = "processing"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether no further transitions happen without a new
// submission or a reset.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// Active reports whether network work is in flight.
func (p Phase) Active() bool {
	return p == PhaseUploading || p == PhaseProcessing
}

// Task is the snapshot of the one operation a controller drives.
//
// TaskID is empty until the upload is accepted. ResultHandle is set only in
// PhaseCompleted and FailureReason only in PhaseFailed.
type Task struct {
	Operation Operation

	TaskID string
	Phase  Phase

	OverallProgress int
	PhaseProgress   int

	// Stage and Message echo the latest server-side progress event.
	Stage   ServerPhase
	Message string

	Submission *Submission

	ResultHandle  string
	FailureReason string
}
