package promotion

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/SCRMS-FPT/court-booking-service/internal/court"
)

// CacheInvalidator drops cached availability for a court after its promotions change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, courtID string) error
}

type Service interface {
	ListByCourt(ctx context.Context, courtID string) ([]Promotion, error)
	GetByID(ctx context.Context, id string) (*Promotion, error)
	Create(ctx context.Context, courtID string, p Params) (*Promotion, error)
	Update(ctx context.Context, id string, p Params) (*Promotion, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	courts court.Service
	cache  CacheInvalidator
}

// NewService wires the promotion service. cache may be nil.
func NewService(repo Repository, courts court.Service, cache CacheInvalidator) Service {
	return &service{
		repo:   repo,
		courts: courts,
		cache:  cache,
	}
}

func (s *service) ListByCourt(ctx context.Context, courtID string) ([]Promotion, error) {
	if _, err := s.courts.GetByID(ctx, courtID); err != nil {
		return nil, err
	}
	return s.repo.GetByCourt(ctx, courtID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Promotion, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, courtID string, p Params) (*Promotion, error) {
	if _, err := s.courts.GetByID(ctx, courtID); err != nil {
		return nil, err
	}

	promo, err := New(courtID, p)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &promo); err != nil {
		return nil, err
	}
	s.invalidate(ctx, courtID)
	return &promo, nil
}

func (s *service) Update(ctx context.Context, id string, p Params) (*Promotion, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := existing.Update(p)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
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

func (s *service) invalidate(ctx context.Context, courtID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, courtID); err != nil {
		log.Warn().Err(err).Str("court_id", courtID).Msg("failed to invalidate availability cache")
	}
}
