package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mizan-erp/mizan/internal/ledger"
	"github.com/mizan-erp/mizan/internal/shared"
)

type memoryRepo struct {
	categories map[uuid.UUID]Category
	entryRefs  map[string]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{categories: make(map[uuid.UUID]Category), entryRefs: make(map[string]int)}
}

func (r *memoryRepo) List(ctx context.Context) ([]Category, error) {
	var out []Category
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) GetByName(ctx context.Context, name string) (Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return Category{}, shared.ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, c Category) (Category, error) {
	r.categories[c.ID] = c
	return c, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.categories, id)
	return nil
}

func (r *memoryRepo) EntryCount(ctx context.Context, name string) (int, error) {
	return r.entryRefs[name], nil
}

func TestCreateCategoryRejectsTrimmedDuplicate(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCategoryRequest{Name: "شامي", Currency: ledger.CurrencyYER, Stock: 10})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateCategoryRequest{Name: " شامي ", Currency: ledger.CurrencyYER})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCreateCategoryDefaultsThreshold(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	cat, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "بلدي", Currency: ledger.CurrencyYER})
	require.NoError(t, err)
	require.Equal(t, 5.0, cat.LowStockThreshold)
}

func TestDeleteCategoryRejectedWhileReferenced(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	cat, err := svc.Create(ctx, CreateCategoryRequest{Name: "شامي", Currency: ledger.CurrencyYER})
	require.NoError(t, err)

	repo.entryRefs["شامي"] = 2
	require.ErrorIs(t, svc.Delete(ctx, cat.ID), shared.ErrConflict)

	repo.entryRefs["شامي"] = 0
	require.NoError(t, svc.Delete(ctx, cat.ID))
}

func TestLowStockFilter(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCategoryRequest{Name: "شامي", Currency: ledger.CurrencyYER, Stock: 3, LowStockThreshold: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCategoryRequest{Name: "بلدي", Currency: ledger.CurrencyYER, Stock: 50, LowStockThreshold: 5})
	require.NoError(t, err)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "شامي", low[0].Name)
}
