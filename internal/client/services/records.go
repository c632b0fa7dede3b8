package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/client/repositories/records"
	"github.com/dmitrijs2005/fileconv/internal/cryptox"
)

// DefaultKeepRecords bounds the local record table.
const DefaultKeepRecords = 500

type RecordService interface {
	// Record stores a finished task. Tasks that are not completed or failed
	// are rejected.
	Record(ctx context.Context, t models.Task) (*models.LocalRecord, error)
	List(ctx context.Context, limit int) ([]models.LocalRecord, error)
	// Previous returns earlier records of the same payload content.
	Previous(ctx context.Context, p models.Payload) ([]models.LocalRecord, error)
}

type recordService struct {
	repo records.Repository
	keep int
	now  func() time.Time
}

func NewRecordService(repo records.Repository, keep int) RecordService {
	if keep <= 0 {
		keep = DefaultKeepRecords
	}
	return &recordService{repo: repo, keep: keep, now: time.Now}
}

func (s *recordService) Record(ctx context.Context, t models.Task) (*models.LocalRecord, error) {
	if !t.Phase.Terminal() {
		return nil, fmt.Errorf("task is %s, not finished", t.Phase)
	}

	fp, err := cryptox.FingerprintOpener(t.Operation.Payload.Open)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", t.Operation.Payload.Name, err)
	}

	r := &models.LocalRecord{
		ID:          uuid.NewString(),
		Kind:        t.Operation.Kind,
		TaskID:      t.TaskID,
		Filename:    t.Operation.Payload.Name,
		Fingerprint: fp,
		Target:      target(t.Operation),
		Phase:       t.Phase,
		Failure:     t.FailureReason,
		FinishedAt:  s.now(),
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("saving record: %w", err)
	}
	if _, err := s.repo.Prune(ctx, s.keep); err != nil {
		return r, fmt.Errorf("pruning records: %w", err)
	}
	return r, nil
}

func (s *recordService) List(ctx context.Context, limit int) ([]models.LocalRecord, error) {
	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return rows, nil
}

func (s *recordService) Previous(ctx context.Context, p models.Payload) ([]models.LocalRecord, error) {
	fp, err := cryptox.FingerprintOpener(p.Open)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", p.Name, err)
	}
	return s.repo.FindByFingerprint(ctx, fp)
}

func target(op models.Operation) string {
	if op.Kind == models.KindCompression {
		return strconv.FormatInt(op.TargetSizeBytes, 10)
	}
	return string(op.TargetFormat)
}
