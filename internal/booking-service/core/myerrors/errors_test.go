package myerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("step 1: %w", Invalid("pickup_location", "please enter pickup location"))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "pickup_location", FieldOf(err))
	assert.Equal(t, "step 1: pickup_location: please enter pickup location", err.Error())
}

func TestFieldOf_NonValidation(t *testing.T) {
	assert.Empty(t, FieldOf(errors.New("boom")))
}

func TestNotFoundFamily(t *testing.T) {
	for _, err := range []error{ErrProfileNotFound, ErrBookingNotFound, ErrDriverNotFound, ErrCheckoutExpired} {
		assert.ErrorIs(t, err, ErrNotFound)
	}
}
