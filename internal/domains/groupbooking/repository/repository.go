package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"time"

	"pms/infras/otel"
	"pms/infras/postgres"
	"pms/internal/domains/groupbooking/model"
	gDto "pms/shared/dto"
	gRepo "pms/shared/repository"
)

type GroupBooking interface {
	Insert(ctx context.Context, model model.GroupBooking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.GroupBooking, error)
	GetForUpdate(ctx context.Context, filter gDto.FilterGroup) (model.GroupBooking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.GroupBooking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.GroupBooking]
}

func New(db *postgres.Connection, otel otel.Otel) GroupBooking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.GroupBooking](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// FilterUpcoming matches groups that are still live and arrive within
// [from, until].
func FilterUpcoming(from, until time.Time) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				ArgName:  "upcoming_status",
				Field:    model.FieldStatus,
				Value:    model.StatusCancelled,
				Operator: gDto.FilterOperatorNotEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "upcoming_from",
				Field:    model.FieldCheckIn,
				Value:    from,
				Operator: gDto.FilterOperatorGreaterEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "upcoming_until",
				Field:    model.FieldCheckIn,
				Value:    until,
				Operator: gDto.FilterOperatorLessEq,
				Table:    model.TableName,
			},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	}
}
