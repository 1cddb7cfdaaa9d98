package validator_test

import (
	"net/http"
	"strings"
	"testing"

	"pms/shared/failure"
	"pms/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	RoomID         string `json:"room_id"         validate:"required"`
	AssignedGuests int    `json:"assigned_guests" validate:"required,min=1"`
}

type request struct {
	GroupName string  `json:"group_name" validate:"required,max=20"`
	Email     string  `json:"email"      validate:"omitempty,email"`
	Currency  string  `json:"currency"   validate:"omitempty,len=3"`
	MealPlan  string  `json:"meal_plan"  validate:"omitempty,oneof=breakfast half-board"`
	CheckIn   string  `json:"check_in"   validate:"required,day"`
	Rooms     []entry `json:"rooms"      validate:"dive"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid request",
			body: `{"group_name":"Acme","check_in":"2025-06-01","rooms":[{"room_id":"A","assigned_guests":2}]}`,
		},
		{
			name:    "malformed json",
			body:    `{"group_name":`,
			wantErr: "failed to decode request body",
		},
		{
			name:    "missing field uses json name",
			body:    `{"check_in":"2025-06-01"}`,
			wantErr: "group_name is required",
		},
		{
			name:    "too long",
			body:    `{"group_name":"A very long group name indeed","check_in":"2025-06-01"}`,
			wantErr: "group_name must be at most 20",
		},
		{
			name:    "invalid email",
			body:    `{"group_name":"Acme","email":"nope","check_in":"2025-06-01"}`,
			wantErr: "email must be a valid email address",
		},
		{
			name:    "currency length",
			body:    `{"group_name":"Acme","currency":"US","check_in":"2025-06-01"}`,
			wantErr: "currency must be exactly 3 characters",
		},
		{
			name:    "enum",
			body:    `{"group_name":"Acme","meal_plan":"buffet","check_in":"2025-06-01"}`,
			wantErr: "meal_plan must be one of breakfast half-board",
		},
		{
			name:    "nested entry keeps its path",
			body:    `{"group_name":"Acme","check_in":"2025-06-01","rooms":[{"room_id":"A","assigned_guests":2},{"room_id":"B","assigned_guests":-1}]}`,
			wantErr: "rooms[1].assigned_guests must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data request
			err := validator.Validate(strings.NewReader(tt.body), &data)

			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestDayValidation(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		expectError bool
	}{
		{name: "calendar date", field: "2024-03-15"},
		{name: "leap day", field: "2024-02-29"},
		{name: "not a leap year", field: "2023-02-29", expectError: true},
		{name: "timestamp", field: "2024-03-15T10:00:00Z", expectError: true},
		{name: "day first", field: "15-03-2024", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateVar(tt.field, "day")

			if !tt.expectError {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), "YYYY-MM-DD")
		})
	}
}
