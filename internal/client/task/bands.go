package task

import (
	"math"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

// Band is the [Lo, Hi] slice of overall progress owned by one phase.
type Band struct {
	Lo, Hi int
}

// Scale maps phase-local progress p (0..100) into the band.
func (b Band) Scale(p int) int {
	p = clamp(p, 0, 100)
	return b.Lo + int(math.Round(float64(p)*float64(b.Hi-b.Lo)/100))
}

// Bands partitions overall progress between the three active stages.
// Completion itself is always 100.
type Bands struct {
	Upload     Band
	Processing Band
	Retrieval  Band
}

var (
	// StreamBands is used when progress events are pushed by the server.
	StreamBands = Bands{
		Upload:     Band{0, 15},
		Processing: Band{15, 80},
		Retrieval:  Band{80, 95},
	}

	// PollBands is used when the result is polled and no events arrive.
	PollBands = Bands{
		Upload:     Band{0, 20},
		Processing: Band{20, 80},
		Retrieval:  Band{80, 100},
	}
)

// forStage returns the band and phase-local progress a server event maps to.
func (b Bands) forStage(ev models.ProgressEvent) (Band, int, bool) {
	switch ev.Phase {
	case models.ServerPhaseUploadingOriginal:
		return b.Processing, 0, true
	case models.ServerPhaseConverting:
		return b.Processing, ev.Progress, true
	case models.ServerPhaseUploadingResult:
		return b.Retrieval, ev.Progress, true
	case models.ServerPhaseCompleted:
		return b.Retrieval, 0, true
	default:
		return Band{}, 0, false
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
