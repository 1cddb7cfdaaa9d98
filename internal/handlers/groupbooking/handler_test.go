package groupbooking_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	otelMocks "pms/infras/otel/mocks"
	"pms/internal/domains/groupbooking/model/dto"
	"pms/internal/domains/groupbooking/service"
	"pms/internal/handlers/groupbooking"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upcomingService struct {
	service.GroupBooking

	days []int
	res  []dto.GroupBookingResponse
	err  error
}

func (s *upcomingService) Upcoming(_ context.Context, days int) ([]dto.GroupBookingResponse, error) {
	s.days = append(s.days, days)

	return s.res, s.err
}

func TestHandler_GetUpcomingGroupBookings(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		err       error
		wantCode  int
		wantCalls []int
	}{
		{name: "default window", query: "", wantCode: http.StatusOK, wantCalls: []int{0}},
		{name: "explicit window", query: "?days=7", wantCode: http.StatusOK, wantCalls: []int{7}},
		{name: "not a number", query: "?days=week", wantCode: http.StatusBadRequest},
		{name: "negative", query: "?days=-3", wantCode: http.StatusBadRequest},
		{name: "service error", query: "?days=7", err: errors.New("redis down"), wantCode: http.StatusInternalServerError, wantCalls: []int{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &upcomingService{
				res: []dto.GroupBookingResponse{{ID: "grp-1", GroupName: "Acme Offsite"}},
				err: tt.err,
			}

			router := chi.NewRouter()
			handler := groupbooking.New(svc, otelMocks.NewOtel())
			handler.Router(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/group-bookings/upcoming"+tt.query, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCalls, svc.days)

			var body map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

			if tt.wantCode == http.StatusOK {
				assert.Contains(t, string(body["data"]), "grp-1")
			} else {
				assert.Contains(t, body, "error")
			}
		})
	}
}
