package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSupplierDetails() SupplierDetails {
	return SupplierDetails{
		Name:    "Fresh Farms",
		Address: "12 Market Road",
		Phone:   "+94 77 123 4567",
		Email:   "Orders@FreshFarms.lk",
	}
}

func TestNewSupplier(t *testing.T) {
	t.Run("creates supplier and normalizes email", func(t *testing.T) {
		s, err := NewSupplier(validSupplierDetails())
		require.NoError(t, err)
		assert.Equal(t, "Fresh Farms", s.Name)
		assert.Equal(t, "orders@freshfarms.lk", s.Email)
	})

	tests := []struct {
		name    string
		mutate  func(d *SupplierDetails)
		message string
	}{
		{"missing name", func(d *SupplierDetails) { d.Name = "" }, "Name is required"},
		{"missing address", func(d *SupplierDetails) { d.Address = " " }, "Address is required"},
		{"missing phone", func(d *SupplierDetails) { d.Phone = "" }, "Phone is required"},
		{"bad phone", func(d *SupplierDetails) { d.Phone = "call me" }, "Invalid phone"},
		{"bad email", func(d *SupplierDetails) { d.Email = "nope" }, "Invalid email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validSupplierDetails()
			tt.mutate(&d)
			_, err := NewSupplier(d)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestSupplier_Apply(t *testing.T) {
	s, err := NewSupplier(validSupplierDetails())
	require.NoError(t, err)

	t.Run("invalid patch leaves supplier untouched", func(t *testing.T) {
		name := "Other"
		email := "broken"
		err := s.Apply(SupplierPatch{Name: &name, Email: &email})
		require.Error(t, err)
		assert.Equal(t, "Fresh Farms", s.Name)
	})

	t.Run("applies only supplied fields", func(t *testing.T) {
		address := "99 Harbour Lane"
		require.NoError(t, s.Apply(SupplierPatch{Address: &address}))
		assert.Equal(t, "99 Harbour Lane", s.Address)
		assert.Equal(t, "Fresh Farms", s.Name)
	})
}

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer(CustomerDetails{FirstName: "Ann", LastName: "Perera", Email: "ann@example.com", Phone: "0771234567"})
	require.NoError(t, err)
	assert.Equal(t, "Ann Perera", c.FullName())
	assert.Empty(t, c.Address)

	_, err = NewCustomer(CustomerDetails{FirstName: "Ann", Email: "ann@example.com", Phone: "0771234567"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Last name is required")
}
