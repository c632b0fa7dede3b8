package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/client/repositories/history"
	"github.com/dmitrijs2005/fileconv/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fileconv/internal/logging"
)

// RefreshedAtKey is the metadata key of the last successful remote listing.
const RefreshedAtKey = "history_refreshed_at"

// HistoryLister is the part of the remote client that lists past tasks.
type HistoryLister interface {
	Conversions(ctx context.Context, limit int) ([]models.ConversionResult, error)
	Compressions(ctx context.Context, limit int) ([]models.CompressionResult, error)
}

// History is one listing. Stale is set when the remote listing failed and
// the rows come from the local cache written at RefreshedAt.
type History struct {
	Conversions  []models.HistoryItem
	Compressions []models.HistoryItem
	Stale        bool
	RefreshedAt  time.Time
}

type HistoryService interface {
	// List never fails because of the remote side; it falls back to the
	// cache and, without one, to an empty listing.
	List(ctx context.Context, limit int) (*History, error)
}

type historyService struct {
	remote   HistoryLister
	cache    history.Repository
	metadata metadata.Repository
	log      logging.Logger
	now      func() time.Time
}

func NewHistoryService(remote HistoryLister, cache history.Repository, meta metadata.Repository, log logging.Logger) HistoryService {
	if log == nil {
		log = logging.Nop()
	}
	return &historyService{remote: remote, cache: cache, metadata: meta, log: log, now: time.Now}
}

func (s *historyService) List(ctx context.Context, limit int) (*History, error) {
	h, err := s.fetch(ctx, limit)
	if err == nil {
		s.store(ctx, h)
		return h, nil
	}
	s.log.Warn(ctx, "history unavailable, using local cache", "error", err)

	cached, cerr := s.cached(ctx, limit)
	if cerr != nil {
		s.log.Warn(ctx, "history cache unreadable", "error", cerr)
		return &History{Stale: true}, nil
	}
	return cached, nil
}

func (s *historyService) fetch(ctx context.Context, limit int) (*History, error) {
	var (
		conversions  []models.ConversionResult
		compressions []models.CompressionResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		conversions, err = s.remote.Conversions(gctx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		compressions, err = s.remote.Compressions(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h := &History{
		Conversions:  make([]models.HistoryItem, 0, len(conversions)),
		Compressions: make([]models.HistoryItem, 0, len(compressions)),
		RefreshedAt:  s.now(),
	}
	for _, r := range conversions {
		h.Conversions = append(h.Conversions, models.FromConversion(r))
	}
	for _, r := range compressions {
		h.Compressions = append(h.Compressions, models.FromCompression(r))
	}
	return h, nil
}

func (s *historyService) store(ctx context.Context, h *History) {
	if err := s.cache.ReplaceAll(ctx, models.KindConversion, h.Conversions); err != nil {
		s.log.Warn(ctx, "caching conversions", "error", err)
		return
	}
	if err := s.cache.ReplaceAll(ctx, models.KindCompression, h.Compressions); err != nil {
		s.log.Warn(ctx, "caching compressions", "error", err)
		return
	}
	if err := metadata.SetTime(ctx, s.metadata, RefreshedAtKey, h.RefreshedAt); err != nil {
		s.log.Warn(ctx, "saving refresh time", "error", err)
	}
}

func (s *historyService) cached(ctx context.Context, limit int) (*History, error) {
	conversions, err := s.cache.List(ctx, models.KindConversion, limit)
	if err != nil {
		return nil, fmt.Errorf("cached conversions: %w", err)
	}
	compressions, err := s.cache.List(ctx, models.KindCompression, limit)
	if err != nil {
		return nil, fmt.Errorf("cached compressions: %w", err)
	}
	at, err := metadata.GetTime(ctx, s.metadata, RefreshedAtKey)
	if err != nil {
		return nil, fmt.Errorf("refresh time: %w", err)
	}
	return &History{Conversions: conversions, Compressions: compressions, Stale: true, RefreshedAt: at}, nil
}
