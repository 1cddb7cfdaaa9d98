package shared

import (
	"math"
	"net/http"
	"reflect"

	"pms/shared/constant"
	"pms/shared/dto"
	"pms/shared/timezone"
)

// CalculateTotalPage returns how many pages of limit rows hold total rows.
// An empty result still has one page.
func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the fields of a struct into a map of updated fields.
func TransformFields(data any, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

// FilterByID matches a single row by its identifier column.
func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// FilterByQuery matches every listed column against the query parameter of the
// same name. Absent parameters are ignored.
func FilterByQuery(r *http.Request, table string, fields ...string) dto.FilterGroup {
	filter := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range fields {
		value := r.URL.Query().Get(field)
		if value == "" {
			continue
		}

		filter.Filters = append(filter.Filters, dto.Filter{
			Field:    field,
			Operator: dto.FilterOperatorEq,
			Value:    value,
			Table:    table,
		})
	}

	return filter
}
