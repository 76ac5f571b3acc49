package service_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shaharia-lab/oxo/internal/service"
)

func TestNotFoundError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.NotFoundError
		expected string
	}{
		{
			name:     "match",
			err:      &service.NotFoundError{Resource: "match", ID: "3f2a"},
			expected: `match "3f2a" not found`,
		},
		{
			name:     "empty ID",
			err:      &service.NotFoundError{Resource: "match", ID: ""},
			expected: `match "" not found`,
		},
		{
			name:     "both empty",
			err:      &service.NotFoundError{},
			expected: ` "" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *service.ValidationError
		expected string
	}{
		{
			name:     "with field and message",
			err:      &service.ValidationError{Field: "count", Message: "must be an integer"},
			expected: `validation error for "count": must be an integer`,
		},
		{
			name:     "without field - returns message only",
			err:      &service.ValidationError{Message: "invalid request body"},
			expected: "invalid request body",
		},
		{
			name:     "empty message with field",
			err:      &service.ValidationError{Field: "rows"},
			expected: `validation error for "rows": `,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrors_As(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", &service.NotFoundError{Resource: "match", ID: "x"})
	var nf *service.NotFoundError
	assert.True(t, errors.As(wrapped, &nf))
	assert.Equal(t, "x", nf.ID)

	var ve *service.ValidationError
	assert.False(t, errors.As(wrapped, &ve))
}
