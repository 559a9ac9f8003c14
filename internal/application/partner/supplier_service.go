package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
)

// SupplierUsage reports how many stocks reference a supplier
type SupplierUsage interface {
	CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
}

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	usage        SupplierUsage
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, usage SupplierUsage) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		usage:        usage,
	}
}

// Create creates a new supplier. Phone and email must not belong to another supplier.
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(partner.SupplierDetails{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	})
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, supplier, nil); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List retrieves a page of suppliers and the total count
func (s *SupplierService) List(ctx context.Context, filter ListFilter) ([]SupplierResponse, int64, error) {
	f := filter.toDomain("name")

	suppliers, err := s.supplierRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	result := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		result[i] = ToSupplierResponse(&suppliers[i])
	}
	return result, total, nil
}

// Update applies a partial update. Changed phone or email values are checked for duplicates.
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *supplier
	if err := supplier.Apply(partner.SupplierPatch{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	}); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, supplier, &before); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete deletes a supplier that no stock references
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	stocks, err := s.usage.CountBySupplier(ctx, id)
	if err != nil {
		return err
	}
	if stocks > 0 {
		return shared.NewConflictError("Supplier %s still has %d stocks", id, stocks)
	}

	err = s.supplierRepo.Delete(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError("Supplier", id)
	}
	return err
}

func (s *SupplierService) find(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Supplier", id)
	}
	return supplier, err
}

// ensureUnique checks phone and email against other suppliers.
// With before set, only values that changed are checked.
func (s *SupplierService) ensureUnique(ctx context.Context, supplier *partner.Supplier, before *partner.Supplier) error {
	var exclude *uuid.UUID
	if before != nil {
		exclude = &supplier.ID
	}

	if before == nil || before.Phone != supplier.Phone {
		exists, err := s.supplierRepo.ExistsByPhone(ctx, supplier.Phone, exclude)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("A supplier with phone %s already exists", supplier.Phone)
		}
	}

	if before == nil || before.Email != supplier.Email {
		exists, err := s.supplierRepo.ExistsByEmail(ctx, supplier.Email, exclude)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("A supplier with email %s already exists", supplier.Email)
		}
	}
	return nil
}
