package parties

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mizan-erp/mizan/internal/shared"
)

type memoryRepo struct {
	customers map[uuid.UUID]Customer
	suppliers map[uuid.UUID]Supplier
	entryRefs map[uuid.UUID]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		customers: make(map[uuid.UUID]Customer),
		suppliers: make(map[uuid.UUID]Supplier),
		entryRefs: make(map[uuid.UUID]int),
	}
}

func (r *memoryRepo) ListCustomers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	r.customers[c.ID] = c
	return c, nil
}

func (r *memoryRepo) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func (r *memoryRepo) CustomerEntryCount(ctx context.Context, id uuid.UUID) (int, error) {
	return r.entryRefs[id], nil
}

func (r *memoryRepo) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	return out, nil
}

func (r *memoryRepo) GetSupplier(ctx context.Context, id uuid.UUID) (Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return Supplier{}, shared.ErrNotFound
	}
	return s, nil
}

func (r *memoryRepo) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	r.suppliers[s.ID] = s
	return s, nil
}

func (r *memoryRepo) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	delete(r.suppliers, id)
	return nil
}

func (r *memoryRepo) SupplierEntryCount(ctx context.Context, id uuid.UUID) (int, error) {
	return r.entryRefs[id], nil
}

func TestCreateCustomerRejectsTrimmedDuplicate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Ali", Phone: "770000001"})
	require.NoError(t, err)

	_, err = svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "  Ali  ", Phone: "770000002"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
	require.Len(t, repo.customers, 1)
}

func TestCreateCustomerDuplicateGuardFoldsCase(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Ahmed Saleh", Phone: "770000001"})
	require.NoError(t, err)

	_, err = svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "AHMED SALEH", Phone: "770000002"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCreateCustomerValidatesName(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.CreateCustomer(context.Background(), CreateCustomerRequest{Name: " x ", Phone: "770000001"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateSupplierRejectsDuplicate(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateSupplier(ctx, CreateSupplierRequest{Name: "مزارع حراز", Phone: "730000001"})
	require.NoError(t, err)

	_, err = svc.CreateSupplier(ctx, CreateSupplierRequest{Name: " مزارع حراز ", Phone: "730000002"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestDeleteCustomerRejectedWhileReferenced(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "Ali", Phone: "770000001"})
	require.NoError(t, err)

	repo.entryRefs[customer.ID] = 3
	err = svc.DeleteCustomer(ctx, customer.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Contains(t, repo.customers, customer.ID)

	repo.entryRefs[customer.ID] = 0
	require.NoError(t, svc.DeleteCustomer(ctx, customer.ID))
	require.NotContains(t, repo.customers, customer.ID)
}
