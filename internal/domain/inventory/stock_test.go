package inventory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStock(t *testing.T) {
	t.Run("creates open stock", func(t *testing.T) {
		supplierID := uuid.New()
		s, err := NewStock(supplierID)
		require.NoError(t, err)
		assert.Equal(t, StockStatusOpen, s.Status)
		assert.Equal(t, supplierID, s.SupplierID)
		assert.Nil(t, s.FinalizedAt)
		assert.Empty(t, s.GetDomainEvents())
	})

	t.Run("requires supplier", func(t *testing.T) {
		_, err := NewStock(uuid.Nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestStock_Finalize(t *testing.T) {
	s, err := NewStock(uuid.New())
	require.NoError(t, err)

	require.NoError(t, s.EnsureOpen())
	require.NoError(t, s.Finalize())
	assert.True(t, s.IsFinalized())
	assert.NotNil(t, s.FinalizedAt)

	events := s.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeStockFinalized, events[0].EventType())

	t.Run("finalized stock rejects changes", func(t *testing.T) {
		err := s.EnsureOpen()
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))

		err = s.ReassignSupplier(uuid.New())
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("cannot finalize twice", func(t *testing.T) {
		err := s.Finalize()
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

func TestStock_ReassignSupplier(t *testing.T) {
	original := uuid.New()
	s, err := NewStock(original)
	require.NoError(t, err)

	require.NoError(t, s.ReassignSupplier(original))
	assert.Empty(t, s.GetDomainEvents())

	next := uuid.New()
	require.NoError(t, s.ReassignSupplier(next))
	assert.Equal(t, next, s.SupplierID)

	events := s.GetDomainEvents()
	require.Len(t, events, 1)
	changed, ok := events[0].(*StockSupplierChangedEvent)
	require.True(t, ok)
	assert.Equal(t, original, changed.PreviousSupplierID)
}
