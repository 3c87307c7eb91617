package parties

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/mizan-erp/mizan/internal/shared"
)

// Repository defines data access methods for the party directories.
type Repository interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error)
	CreateCustomer(ctx context.Context, c Customer) (Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	CustomerEntryCount(ctx context.Context, id uuid.UUID) (int, error)

	ListSuppliers(ctx context.Context) ([]Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (Supplier, error)
	CreateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
	SupplierEntryCount(ctx context.Context, id uuid.UUID) (int, error)
}

// Service coordinates directory operations.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var foldCaser = cases.Fold()

// NormalizeName produces the canonical form used for duplicate detection:
// NFKC-normalised, whitespace-trimmed, case-folded.
func NormalizeName(name string) string {
	return foldCaser.String(norm.NFKC.String(strings.TrimSpace(name)))
}

// CreateCustomer registers a customer, rejecting trimmed-name duplicates
// before delegating to persistence.
func (s *Service) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	name := strings.TrimSpace(req.Name)
	if len([]rune(name)) < 2 {
		return Customer{}, fmt.Errorf("%w: customer name too short", shared.ErrValidation)
	}
	existing, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return Customer{}, fmt.Errorf("parties: list customers: %w", err)
	}
	key := NormalizeName(name)
	for _, c := range existing {
		if NormalizeName(c.Name) == key {
			return Customer{}, fmt.Errorf("%w: customer %q already exists", shared.ErrDuplicate, c.Name)
		}
	}
	created, err := s.repo.CreateCustomer(ctx, Customer{
		ID:      uuid.New(),
		Name:    name,
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	})
	if err != nil {
		return Customer{}, fmt.Errorf("parties: create customer: %w", err)
	}
	return created, nil
}

// CreateSupplier registers a supplier with the same duplicate guard.
func (s *Service) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if len([]rune(name)) < 2 {
		return Supplier{}, fmt.Errorf("%w: supplier name too short", shared.ErrValidation)
	}
	existing, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return Supplier{}, fmt.Errorf("parties: list suppliers: %w", err)
	}
	key := NormalizeName(name)
	for _, sup := range existing {
		if NormalizeName(sup.Name) == key {
			return Supplier{}, fmt.Errorf("%w: supplier %q already exists", shared.ErrDuplicate, sup.Name)
		}
	}
	created, err := s.repo.CreateSupplier(ctx, Supplier{
		ID:     uuid.New(),
		Name:   name,
		Phone:  strings.TrimSpace(req.Phone),
		Region: strings.TrimSpace(req.Region),
	})
	if err != nil {
		return Supplier{}, fmt.Errorf("parties: create supplier: %w", err)
	}
	return created, nil
}

// ListCustomers returns every customer ordered by name.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// ListSuppliers returns every supplier ordered by name.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// GetCustomer fetches one customer.
func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// GetSupplier fetches one supplier.
func (s *Service) GetSupplier(ctx context.Context, id uuid.UUID) (Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

// CustomerName resolves a customer's display name for creation-time
// snapshots on ledger entries.
func (s *Service) CustomerName(ctx context.Context, id uuid.UUID) (string, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return "", err
	}
	return customer.Name, nil
}

// SupplierName resolves a supplier's display name.
func (s *Service) SupplierName(ctx context.Context, id uuid.UUID) (string, error) {
	supplier, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		return "", err
	}
	return supplier.Name, nil
}

// DeleteCustomer removes a customer only when no ledger entries reference
// them; cascading deletes are never assumed safe.
func (s *Service) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.CustomerEntryCount(ctx, id)
	if err != nil {
		return fmt.Errorf("parties: count customer entries: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: customer has %d ledger entries", shared.ErrConflict, count)
	}
	return s.repo.DeleteCustomer(ctx, id)
}

// DeleteSupplier mirrors DeleteCustomer for suppliers.
func (s *Service) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.SupplierEntryCount(ctx, id)
	if err != nil {
		return fmt.Errorf("parties: count supplier entries: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: supplier has %d ledger entries", shared.ErrConflict, count)
	}
	return s.repo.DeleteSupplier(ctx, id)
}
