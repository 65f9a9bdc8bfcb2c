package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "conflict", err: ErrPetExists, wantStatus: http.StatusConflict, wantCode: "PET_EXISTS"},
		{name: "role conflict", err: ErrPetRoleExists, wantStatus: http.StatusConflict, wantCode: "PET_ROLE_EXISTS"},
		{name: "not found", err: ErrPetNotFound, wantStatus: http.StatusNotFound, wantCode: "PET_NOT_FOUND"},
		{name: "address", err: ErrAddressNotFound, wantStatus: http.StatusNotFound, wantCode: "ADDRESS_NOT_FOUND"},
		{name: "ownership", err: ErrTokenAndIDNotMatch, wantStatus: http.StatusForbidden, wantCode: "TOKEN_AND_ID_NOT_MATCH"},
		{name: "admin code", err: ErrAdminCodeNotMatch, wantStatus: http.StatusBadRequest, wantCode: "ADMIN_CODE_NOT_MATCH"},
		{name: "wrapped", err: fmt.Errorf("update pet: %w", ErrPetNotFound), wantStatus: http.StatusNotFound, wantCode: "PET_NOT_FOUND"},
		{name: "unknown", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.ToErrorResponse().Code)
		})
	}
}

func TestBusinessError_Is(t *testing.T) {
	wrapped := fmt.Errorf("delete pet: %w", ErrTokenAndIDNotMatch)
	assert.ErrorIs(t, wrapped, ErrTokenAndIDNotMatch)
	assert.NotErrorIs(t, wrapped, ErrPetNotFound)
	assert.Equal(t, "Token and id not match", wrapped.(interface{ Unwrap() error }).Unwrap().Error())
}
