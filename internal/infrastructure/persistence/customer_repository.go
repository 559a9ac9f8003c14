package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := conn(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple customers by their IDs
func (r *GormCustomerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Customer, error) {
	if len(ids) == 0 {
		return []partner.Customer{}, nil
	}

	var rows []models.CustomerModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCustomers(rows), nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	var rows []models.CustomerModel
	query := applyPage(r.search(ctx, filter), filter, CustomerSortFields, "created_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCustomers(rows), nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.search(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return conn(ctx, r.db).Save(models.CustomerModelFromDomain(customer)).Error
}

// ExistsByPhone checks whether a customer uses phone
func (r *GormCustomerRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.CustomerModel{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks whether a customer uses email
func (r *GormCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.CustomerModel{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *GormCustomerRepository) search(ctx context.Context, filter shared.Filter) *gorm.DB {
	query := conn(ctx, r.db).Model(&models.CustomerModel{})
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", p, p, p)
	}
	return query
}

func toCustomers(rows []models.CustomerModel) []partner.Customer {
	customers := make([]partner.Customer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
