package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"pms/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request from error", err: failure.BadRequest(errors.New("bad input")), code: http.StatusBadRequest, message: "bad input"},
		{name: "bad request from string", err: failure.BadRequestFromString("check_out must be after check_in"), code: http.StatusBadRequest, message: "check_out must be after check_in"},
		{name: "unauthorized", err: failure.Unauthorized("Token has expired"), code: http.StatusUnauthorized, message: "Token has expired"},
		{name: "not found", err: failure.NotFound("group booking not found"), code: http.StatusNotFound, message: "group booking not found"},
		{name: "conflict", err: failure.Conflict("room number already exists"), code: http.StatusConflict, message: "room number already exists"},
		{name: "forbidden", err: failure.ForbiddenError, code: http.StatusForbidden, message: "You don't have the required permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.EqualError(t, tt.err, tt.message)
		})
	}
}

func TestBadRequest_Nil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode(t *testing.T) {
	base := &failure.Failure{Code: http.StatusConflict, Message: "allocated room is no longer available"}

	t.Run("wrapped failure keeps its code", func(t *testing.T) {
		err := fmt.Errorf("%w: room 101", base)

		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		assert.ErrorIs(t, err, base)
		assert.EqualError(t, err, "allocated room is no longer available: room 101")
	})

	t.Run("plain error is internal", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("connection reset")))
	})

	t.Run("nil error is internal", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
	})
}
