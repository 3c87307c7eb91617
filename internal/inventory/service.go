package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mizan-erp/mizan/internal/parties"
	"github.com/mizan-erp/mizan/internal/shared"
)

// Repository defines data access methods for categories.
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByName(ctx context.Context, name string) (Category, error)
	Create(ctx context.Context, c Category) (Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	EntryCount(ctx context.Context, name string) (int, error)
}

// Service coordinates category operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// List returns every category ordered by name.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Create registers a category, rejecting trimmed-name duplicates before
// delegating to persistence.
func (s *Service) Create(ctx context.Context, req CreateCategoryRequest) (Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: category name required", shared.ErrValidation)
	}
	existing, err := s.repo.List(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("inventory: list categories: %w", err)
	}
	key := parties.NormalizeName(name)
	for _, c := range existing {
		if parties.NormalizeName(c.Name) == key {
			return Category{}, fmt.Errorf("%w: category %q already exists", shared.ErrDuplicate, c.Name)
		}
	}
	threshold := req.LowStockThreshold
	if threshold == 0 {
		threshold = 5
	}
	created, err := s.repo.Create(ctx, Category{
		ID:                uuid.New(),
		Name:              name,
		Stock:             req.Stock,
		Price:             req.Price,
		Currency:          req.Currency,
		LowStockThreshold: threshold,
	})
	if err != nil {
		return Category{}, fmt.Errorf("inventory: create category: %w", err)
	}
	return created, nil
}

// Delete removes a category only when no ledger entries reference it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("inventory: list categories: %w", err)
	}
	var target *Category
	for i := range categories {
		if categories[i].ID == id {
			target = &categories[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: category %s", shared.ErrNotFound, id)
	}
	count, err := s.repo.EntryCount(ctx, target.Name)
	if err != nil {
		return fmt.Errorf("inventory: count category entries: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: category has %d ledger entries", shared.ErrConflict, count)
	}
	return s.repo.Delete(ctx, id)
}

// LowStock filters categories at or below their threshold.
func (s *Service) LowStock(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var low []Category
	for _, c := range categories {
		if c.LowStock() {
			low = append(low, c)
		}
	}
	return low, nil
}
