package schedule

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/SCRMS-FPT/court-booking-service/internal/court"
)

// CacheInvalidator drops cached availability for a court after its schedules change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, courtID string) error
}

type Service interface {
	ListByCourt(ctx context.Context, courtID string) ([]Schedule, error)
	GetByID(ctx context.Context, id string) (*Schedule, error)
	Create(ctx context.Context, courtID string, p Params) (*Schedule, error)
	Update(ctx context.Context, id string, p Params) (*Schedule, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	courts court.Service
	cache  CacheInvalidator
}

// NewService wires the schedule service. cache may be nil.
func NewService(repo Repository, courts court.Service, cache CacheInvalidator) Service {
	return &service{
		repo:   repo,
		courts: courts,
		cache:  cache,
	}
}

func (s *service) ListByCourt(ctx context.Context, courtID string) ([]Schedule, error) {
	if _, err := s.courts.GetByID(ctx, courtID); err != nil {
		return nil, err
	}
	return s.repo.GetByCourt(ctx, courtID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Schedule, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, courtID string, p Params) (*Schedule, error) {
	if _, err := s.courts.GetByID(ctx, courtID); err != nil {
		return nil, err
	}

	sch, err := New(courtID, p)
	if err != nil {
		return nil, err
	}
	err = s.repo.WithCourtLock(ctx, courtID, func(tx Repository) error {
		if err := checkOverlap(ctx, tx, sch); err != nil {
			return err
		}
		return tx.Create(ctx, &sch)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, courtID)
	return &sch, nil
}

func (s *service) Update(ctx context.Context, id string, p Params) (*Schedule, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := existing.Update(p)
	if err != nil {
		return nil, err
	}
	err = s.repo.WithCourtLock(ctx, updated.CourtID, func(tx Repository) error {
		if err := checkOverlap(ctx, tx, updated); err != nil {
			return err
		}
		return tx.Update(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, updated.CourtID)
	return &updated, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, existing.CourtID)
	return nil
}

// checkOverlap rejects a schedule that would share hours with a sibling on a common weekday.
// Callers hold the court lock until the write lands.
func checkOverlap(ctx context.Context, repo Repository, candidate Schedule) error {
	siblings, err := repo.GetByCourt(ctx, candidate.CourtID)
	if err != nil {
		return err
	}
	for _, other := range siblings {
		if other.ID == candidate.ID {
			continue
		}
		if candidate.Conflicts(other) {
			return ErrOverlap
		}
	}
	return nil
}

func (s *service) invalidate(ctx context.Context, courtID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, courtID); err != nil {
		log.Warn().Err(err).Str("court_id", courtID).Msg("failed to invalidate availability cache")
	}
}
