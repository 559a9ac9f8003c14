package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	err := fmt.Errorf("load stock: %w", NewNotFoundError("stock", 42))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "stock 42 not found", errors.Unwrap(err).Error())

	var de *DomainError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, CodeNotFound, de.Code)
}

func TestPartialFailureError(t *testing.T) {
	err := NewPartialFailureError("Some products could not be removed", nil, []string{"a missing", "b missing"})

	assert.Equal(t, []string{}, err.Succeeded)
	assert.Equal(t, "Some products could not be removed: a missing; b missing", err.Error())
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
	assert.Equal(t, 0, Filter{Page: 0, PageSize: 20}.Offset())
}
