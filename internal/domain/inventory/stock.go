package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
)

// StockStatus represents the lifecycle state of a stock intake
type StockStatus string

const (
	// StockStatusOpen accepts line-item changes
	StockStatusOpen StockStatus = "OPEN"
	// StockStatusFinalized is closed for line-item changes
	StockStatusFinalized StockStatus = "FINALIZED"
)

// IsValid checks if the status is a known value
func (s StockStatus) IsValid() bool {
	return s == StockStatusOpen || s == StockStatusFinalized
}

// Stock is one physical delivery from a supplier. Its line items are stored
// separately and loaded through the repository when needed.
type Stock struct {
	shared.BaseAggregateRoot
	SupplierID  uuid.UUID
	Status      StockStatus
	FinalizedAt *time.Time
}

// NewStock creates a new open stock intake for a supplier
func NewStock(supplierID uuid.UUID) (*Stock, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("Supplier ID is required")
	}

	s := &Stock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		Status:            StockStatusOpen,
	}
	return s, nil
}

// IsFinalized reports whether the stock is closed for changes
func (s *Stock) IsFinalized() bool {
	return s.Status == StockStatusFinalized
}

// EnsureOpen returns an InvalidState error when the stock no longer accepts changes
func (s *Stock) EnsureOpen() error {
	if s.IsFinalized() {
		return shared.NewInvalidStateError("Stock %s is finalized and cannot be modified", s.ID)
	}
	return nil
}

// Received records that the stock was taken in with itemCount line items
func (s *Stock) Received(itemCount int) {
	s.AddDomainEvent(NewStockReceivedEvent(s, itemCount))
}

// ReassignSupplier moves the stock to another supplier
func (s *Stock) ReassignSupplier(supplierID uuid.UUID) error {
	if err := s.EnsureOpen(); err != nil {
		return err
	}
	if supplierID == uuid.Nil {
		return shared.NewValidationError("Supplier ID is required")
	}
	if supplierID == s.SupplierID {
		return nil
	}

	previous := s.SupplierID
	s.SupplierID = supplierID
	s.Touch()
	s.AddDomainEvent(NewStockSupplierChangedEvent(s, previous))
	return nil
}

// Finalize closes the stock for further line-item changes
func (s *Stock) Finalize() error {
	if s.IsFinalized() {
		return shared.NewInvalidStateError("Stock %s is already finalized", s.ID)
	}

	now := time.Now().UTC()
	s.Status = StockStatusFinalized
	s.FinalizedAt = &now
	s.UpdatedAt = now
	s.AddDomainEvent(NewStockFinalizedEvent(s))
	return nil
}
