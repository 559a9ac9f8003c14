package partner

import (
	"strings"

	"github.com/stockroom/backend/internal/domain/shared"
)

// Customer is a buyer that a stock line item may be attributed to
type Customer struct {
	shared.BaseEntity
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// CustomerDetails carries the fields needed to register a customer
type CustomerDetails struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// NewCustomer creates a new customer. Address is optional.
func NewCustomer(d CustomerDetails) (*Customer, error) {
	first, err := requireField("First name", d.FirstName, 100)
	if err != nil {
		return nil, err
	}
	last, err := requireField("Last name", d.LastName, 100)
	if err != nil {
		return nil, err
	}
	email, err := validateEmail(d.Email)
	if err != nil {
		return nil, err
	}
	phone, err := validatePhone(d.Phone)
	if err != nil {
		return nil, err
	}

	return &Customer{
		BaseEntity: shared.NewBaseEntity(),
		FirstName:  first,
		LastName:   last,
		Email:      email,
		Phone:      phone,
		Address:    strings.TrimSpace(d.Address),
	}, nil
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
