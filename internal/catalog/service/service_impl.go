package service

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/nahomjim91/spice-marketplace/internal/catalog/domain"
	"github.com/nahomjim91/spice-marketplace/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Product, error) {
	filter := domain.ListRequest{
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
		InStock:  req.InStock,
	}
	return s.repo.List(ctx, s.db, filter)
}

// Upsert creates or replaces a catalog record. A blank id is derived from the name.
func (s *Service) Upsert(ctx context.Context, req domain.UpsertRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = slug.Make(name)
	}
	if id == "" || id != slug.Make(id) {
		return nil, domain.ErrInvalidID
	}
	if req.Price.IsNegative() || !req.Price.Equal(req.Price.Truncate(2)) {
		return nil, domain.ErrInvalidPrice
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	now := s.clock.Now()
	p := &domain.Product{
		ID:        id,
		Name:      name,
		Category:  slug.Make(req.Category),
		Price:     req.Price,
		Weight:    strings.TrimSpace(req.Weight),
		Region:    strings.TrimSpace(req.Region),
		InStock:   inStock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, s.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Seed loads the launch assortment; running it again refreshes the same rows.
func (s *Service) Seed(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&domain.Product{}); err != nil {
		return err
	}
	for _, req := range launchProducts {
		if _, err := s.Upsert(ctx, req); err != nil {
			return err
		}
	}
	s.log.Info("catalog seeded", zap.Int("products", len(launchProducts)))
	return nil
}
