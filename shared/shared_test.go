package shared_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pms/shared"
	"pms/shared/constant"
	"pms/shared/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{name: "no rows", total: 0, limit: 10, expected: 1},
		{name: "exact pages", total: 20, limit: 10, expected: 2},
		{name: "remainder rounds up", total: 21, limit: 10, expected: 3},
		{name: "fewer rows than limit", total: 3, limit: 10, expected: 1},
		{name: "zero limit", total: 50, limit: 0, expected: 1},
		{name: "negative limit", total: 50, limit: -5, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestTransformFields(t *testing.T) {
	type roomPatch struct {
		Number       string  `db:"number"`
		Floor        int     `db:"floor"`
		Rate         float64 `db:"rate"`
		MaxOccupancy *int    `db:"max_occupancy"`
		Notes        string
		Status       string `db:""`
	}

	zero := 0

	tests := []struct {
		name     string
		data     any
		expected map[string]any
	}{
		{
			name: "populated fields are kept",
			data: roomPatch{Number: "101", Floor: 1, Notes: "ignored", Status: "ignored"},
			expected: map[string]any{
				"number": "101",
				"floor":  1,
			},
		},
		{
			name:     "zero values are skipped",
			data:     roomPatch{},
			expected: map[string]any{},
		},
		{
			name: "non-nil pointer to zero is kept",
			data: roomPatch{MaxOccupancy: &zero},
			expected: map[string]any{
				"max_occupancy": &zero,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shared.TransformFields(tt.data, "front-desk")

			assert.Equal(t, "front-desk", result[constant.FieldModifiedBy])
			assert.IsType(t, time.Time{}, result[constant.FieldModifiedAt])

			delete(result, constant.FieldModifiedBy)
			delete(result, constant.FieldModifiedAt)

			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFilterByID(t *testing.T) {
	got := shared.FilterByID("grp-1", "id", "group_bookings")

	require.Len(t, got.Filters, 1)
	assert.Equal(t, dto.Filter{
		Field:    "id",
		Value:    "grp-1",
		Operator: dto.FilterOperatorEq,
		Table:    "group_bookings",
	}, got.Filters[0])

	where, args := got.GetWhereClause()
	assert.Contains(t, where, "group_bookings.id")
	assert.Equal(t, map[string]any{"id": "grp-1"}, args)
}

func TestFilterByQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/rooms?status=clean&floor=&ignored=x", nil)

	got := shared.FilterByQuery(req, "rooms", "status", "type", "floor")

	assert.Equal(t, dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{
				Field:    "status",
				Value:    "clean",
				Operator: dto.FilterOperatorEq,
				Table:    "rooms",
			},
		},
	}, got)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "room", shared.BuildCacheKey("room"))
	assert.Equal(t, "room:101", shared.BuildCacheKey("room", "101"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 2, Limit: 10, SortBy: "number", SortDir: "asc"}

	clean := shared.BuildCacheKeyWithQuery("rooms", params, shared.FilterByID("clean", "status", "rooms"))
	dirty := shared.BuildCacheKeyWithQuery("rooms", params, shared.FilterByID("dirty", "status", "rooms"))

	assert.True(t, strings.HasPrefix(clean, "rooms:p2:l10:number:asc:"))
	assert.NotEqual(t, clean, dirty)
	assert.Equal(t, clean, shared.BuildCacheKeyWithQuery("rooms", params, shared.FilterByID("clean", "status", "rooms")))
}
