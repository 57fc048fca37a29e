package catalog

import (
	"context"

	"shopcore/internal/domain"
	productrepo "shopcore/internal/repository/product"
)

// Service is the read side of the catalog. Inventory writes go through the
// inventory engine, never through here.
type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	return s.repo.ListPublished(ctx, limit, offset)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}
