package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain", NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{"wrapped domain", fmt.Errorf("ctx: %w", NewDuplicateAcceptance("j1")), CodeDuplicateAcceptance, http.StatusConflict},
		{"no rows", pgx.ErrNoRows, CodeNotFound, http.StatusNotFound},
		{"fiber not found", fiber.ErrNotFound, CodeNotFound, http.StatusNotFound},
		{"fiber bad request", fiber.NewError(http.StatusBadRequest, "bad"), CodeValidation, http.StatusBadRequest},
		{"plain", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDomainError(tc.err)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.status, got.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestFromStatus(t *testing.T) {
	err := FromStatus(http.StatusConflict, CodeDuplicateAcceptance, "already", map[string]any{"job_id": "j1"})
	assert.True(t, HasCode(err, CodeDuplicateAcceptance))

	err = FromStatus(http.StatusForbidden, "", "", nil)
	assert.True(t, HasCode(err, CodeForbidden))
	assert.Equal(t, "Forbidden", err.Error())

	assert.True(t, HasCode(FromStatus(http.StatusBadGateway, "", "", nil), CodeInternal))
	assert.False(t, HasCode(errors.New("x"), CodeInternal))
}

func TestTransportErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError(cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeTransport))
}
