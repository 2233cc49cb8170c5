package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorCarriesAllFields(t *testing.T) {
	err := NewValidation("invalid rate card",
		FieldError{Field: "name", Message: "is required"},
		FieldError{Field: "zonePricing", Message: "missing zones: zoneC"},
	)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "invalid rate card: name: is required; zonePricing: missing zones: zoneC", err.Error())

	wrapped := fmt.Errorf("create: %w", err)
	ve, ok := AsValidation(wrapped)
	assert.True(t, ok)
	assert.Len(t, ve.Fields, 2)
}

func TestSentinels(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("rate card")))
	assert.Equal(t, "rate card: resource not found", NotFound("rate card").Error())
	assert.True(t, IsConflict(Conflict("rate card %q already exists", "V1")))
	assert.False(t, IsConflict(NotFound("company")))
	assert.Equal(t, `rate card "V1" is locked`, Conflict("rate card %q is locked", "V1").Error())

	_, ok := AsValidation(errors.New("boom"))
	assert.False(t, ok)
}
