package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{name: "required", err: &ValidationError{Field: "brand", Message: "is required"}, want: "brand is required"},
		{name: "too long", err: &ValidationError{Field: "title", Message: "must not exceed 255 characters"}, want: "title must not exceed 255 characters"},
		{name: "no field", err: &ValidationError{Message: "request is empty"}, want: "request is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestValidationError_UnwrapsToInvalidInput(t *testing.T) {
	err := fmt.Errorf("create article: %w", &ValidationError{Field: "brand", Message: "is required"})

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "create article: brand is required", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "brand", ve.Field)
}

func TestParseCountry_Message(t *testing.T) {
	_, err := ParseCountry("us")
	assert.EqualError(t, err, `country "us" is not supported; use one of DE, AT, CH, FR, IT, ES, NL, BE, PL, DK`)
}
