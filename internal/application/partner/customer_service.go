package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
)

// CustomerService handles customer registration and lookup
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// Create registers a customer with a unique email and phone
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(partner.CustomerDetails{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		return nil, err
	}

	exists, err := s.customerRepo.ExistsByEmail(ctx, customer.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("A customer with email %s already exists", customer.Email)
	}
	exists, err = s.customerRepo.ExistsByPhone(ctx, customer.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("A customer with phone %s already exists", customer.Phone)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Customer", id)
	}
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List retrieves a page of customers and the total count
func (s *CustomerService) List(ctx context.Context, filter ListFilter) ([]CustomerResponse, int64, error) {
	f := filter.toDomain("last_name")

	customers, err := s.customerRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	result := make([]CustomerResponse, len(customers))
	for i := range customers {
		result[i] = ToCustomerResponse(&customers[i])
	}
	return result, total, nil
}
