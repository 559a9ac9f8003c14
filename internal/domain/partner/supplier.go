package partner

import (
	"github.com/stockroom/backend/internal/domain/shared"
)

// Supplier represents a vendor that delivers stock
type Supplier struct {
	shared.BaseEntity
	Name    string
	Address string
	Phone   string
	Email   string
}

// SupplierDetails carries the editable supplier fields
type SupplierDetails struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// SupplierPatch carries optional supplier changes. Nil fields are left unchanged.
type SupplierPatch struct {
	Name    *string
	Address *string
	Phone   *string
	Email   *string
}

// NewSupplier creates a new supplier. All fields are required.
func NewSupplier(d SupplierDetails) (*Supplier, error) {
	s := &Supplier{BaseEntity: shared.NewBaseEntity()}
	if err := s.apply(SupplierPatch{Name: &d.Name, Address: &d.Address, Phone: &d.Phone, Email: &d.Email}); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply patches the supplier with the non-nil fields of p
func (s *Supplier) Apply(p SupplierPatch) error {
	if err := s.apply(p); err != nil {
		return err
	}
	s.Touch()
	return nil
}

func (s *Supplier) apply(p SupplierPatch) error {
	next := *s
	var err error
	if p.Name != nil {
		if next.Name, err = requireField("Name", *p.Name, 200); err != nil {
			return err
		}
	}
	if p.Address != nil {
		if next.Address, err = requireField("Address", *p.Address, 500); err != nil {
			return err
		}
	}
	if p.Phone != nil {
		if next.Phone, err = validatePhone(*p.Phone); err != nil {
			return err
		}
	}
	if p.Email != nil {
		if next.Email, err = validateEmail(*p.Email); err != nil {
			return err
		}
	}
	*s = next
	return nil
}
