package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"pms/infras/otel"
	"pms/infras/postgres"
	"pms/shared/constant"
	"pms/shared/dto"
	"pms/shared/logger"

	"github.com/jmoiron/sqlx"
)

var (
	errRequiredFilter      = errors.New("required filter")
	errRequiredTransaction = errors.New("row locks require a transaction")
)

type queryer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

// Repository is the table gateway shared by every domain. Columns come from
// the db tags of T, including embedded structs such as model.Metadata.
type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entity        string
	primaryColumn string
	columns       []string
	insertQuery   string
}

func NewRepository[T any](entityName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	columns := dbColumns(reflect.TypeOf(zero))

	placeholders := make([]string, len(columns))
	for i, col := range columns {
		placeholders[i] = ":" + col
	}

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryColumn: primaryColumn,
		columns:       columns,
		insertQuery: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", ")),
	}
}

func (repo *Repository[T]) scope(ctx context.Context, operation string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName,
		fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, operation))
}

// reader prefers the transaction carried by ctx so reads inside a unit of work
// observe its own uncommitted writes and locks.
func (repo *Repository[T]) reader(ctx context.Context) queryer {
	if tx, ok := postgres.TxFromContext(ctx); ok {
		return tx
	}

	return repo.db.Read
}

func (repo *Repository[T]) writer(ctx context.Context) queryer {
	if tx, ok := postgres.TxFromContext(ctx); ok {
		return tx
	}

	return repo.db.Write
}

func (repo *Repository[T]) exec(ctx context.Context, scope otel.Scope, action, query string, arg any) error {
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := repo.writer(ctx).NamedExecContext(ctx, query, arg); err != nil {
		logger.ErrorWithStack(err)

		return translateError(fmt.Sprintf("failed to %s (%s)", action, repo.entity), err)
	}

	return nil
}

// query prepares a named statement against the reader and hands it to fn.
func (repo *Repository[T]) query(ctx context.Context, scope otel.Scope, query string, fn func(*sqlx.NamedStmt) error) error {
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := repo.reader(ctx).PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to prepare statement (%s): %w", repo.entity, err)
	}
	defer stmt.Close()

	return fn(stmt)
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) (err error) {
	ctx, scope := repo.scope(ctx, "Insert")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return repo.exec(ctx, scope, "insert data", repo.insertQuery, model)
}

// InsertBulk writes every model in one multi-row statement.
func (repo *Repository[T]) InsertBulk(ctx context.Context, models []T) (err error) {
	ctx, scope := repo.scope(ctx, "InsertBulk")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(models) == 0 {
		return nil
	}

	scope.SetAttribute("db.rows", len(models))

	return repo.exec(ctx, scope, "bulk insert data", repo.insertQuery, models)
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (exist bool, err error) {
	ctx, scope := repo.scope(ctx, "Exist")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	where, args := whereClause(filter)
	if where == "" {
		return false, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s %s)", repo.table, where)

	err = repo.query(ctx, scope, query, func(stmt *sqlx.NamedStmt) error {
		if err := stmt.GetContext(ctx, &exist, args); err != nil {
			logger.ErrorWithStack(err)

			return fmt.Errorf("failed to check exist data (%s): %w", repo.entity, err)
		}

		return nil
	})

	return exist, err
}

// Get returns the first matching row, or the zero T when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (model T, err error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return repo.get(ctx, scope, filter, "", columns...)
}

// GetForUpdate reads a single row and holds its lock until the surrounding
// transaction ends.
func (repo *Repository[T]) GetForUpdate(ctx context.Context, filter dto.FilterGroup) (model T, err error) {
	ctx, scope := repo.scope(ctx, "GetForUpdate")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, ok := postgres.TxFromContext(ctx); !ok {
		return model, errRequiredTransaction
	}

	return repo.get(ctx, scope, filter, "FOR UPDATE")
}

func (repo *Repository[T]) get(ctx context.Context, scope otel.Scope, filter dto.FilterGroup, lock string, columns ...string) (model T, err error) {
	where, args := whereClause(filter)
	query := fmt.Sprintf("SELECT %s FROM %s %s %s", repo.selectList(columns), repo.table, where, lock)

	err = repo.query(ctx, scope, query, func(stmt *sqlx.NamedStmt) error {
		err := stmt.GetContext(ctx, &model, args)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil
		case err != nil:
			logger.ErrorWithStack(err)

			return fmt.Errorf("failed to get data (%s): %w", repo.entity, err)
		}

		return nil
	})

	return model, err
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) (models []T, err error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	where, args := whereClause(filter)

	var ordering, pagination string

	if params.SortBy != "" && params.SortDir != "" {
		// The primary key keeps pages stable when the sort column has ties.
		ordering = fmt.Sprintf("ORDER BY %s %s, %s.%s", params.SortBy, params.SortDir, repo.table, repo.primaryColumn)
	}

	if params.Limit > 0 {
		args["limit"] = params.Limit
		args["offset"] = params.Offset()
		pagination = "LIMIT :limit OFFSET :offset"
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s %s %s", repo.selectList(columns), repo.table, where, ordering, pagination)

	return repo.selectAll(ctx, scope, query, args)
}

// GetAllForUpdate locks every matching row in primary key order, so concurrent
// lockers of overlapping sets always acquire them in the same sequence.
func (repo *Repository[T]) GetAllForUpdate(ctx context.Context, filter dto.FilterGroup) (models []T, err error) {
	ctx, scope := repo.scope(ctx, "GetAllForUpdate")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, ok := postgres.TxFromContext(ctx); !ok {
		return nil, errRequiredTransaction
	}

	where, args := whereClause(filter)
	if where == "" {
		return nil, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s ORDER BY %s.%s FOR UPDATE",
		repo.selectList(nil), repo.table, where, repo.table, repo.primaryColumn)

	return repo.selectAll(ctx, scope, query, args)
}

func (repo *Repository[T]) selectAll(ctx context.Context, scope otel.Scope, query string, args map[string]any) (models []T, err error) {
	err = repo.query(ctx, scope, query, func(stmt *sqlx.NamedStmt) error {
		if err := stmt.SelectContext(ctx, &models, args); err != nil {
			logger.ErrorWithStack(err)

			return fmt.Errorf("failed to get all data (%s): %w", repo.entity, err)
		}

		return nil
	})

	return models, err
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (count int, err error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	where, args := whereClause(filter)
	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s %s", repo.table, repo.primaryColumn, repo.table, where)

	err = repo.query(ctx, scope, query, func(stmt *sqlx.NamedStmt) error {
		if err := stmt.GetContext(ctx, &count, args); err != nil {
			logger.ErrorWithStack(err)

			return fmt.Errorf("failed to count data (%s): %w", repo.entity, err)
		}

		return nil
	})

	return count, err
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) (err error) {
	ctx, scope := repo.scope(ctx, "Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	where, args := whereClause(filter)
	if where == "" {
		return errRequiredFilter
	}

	return repo.exec(ctx, scope, "delete data", fmt.Sprintf("DELETE FROM %s %s", repo.table, where), args)
}

// Update sets the given columns on every matching row. Column names come
// from code, never from requests; values are bound as named parameters.
func (repo *Repository[T]) Update(ctx context.Context, fields map[string]any, filter dto.FilterGroup) (err error) {
	ctx, scope := repo.scope(ctx, "Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	where, args := whereClause(filter)
	if where == "" {
		return errRequiredFilter
	}

	assignments := make([]string, 0, len(fields))
	for _, col := range slices.Sorted(maps.Keys(fields)) {
		assignments = append(assignments, fmt.Sprintf("%s = :%s", col, col))
	}

	maps.Copy(args, fields)

	query := fmt.Sprintf("UPDATE %s SET %s %s", repo.table, strings.Join(assignments, ", "), where)

	return repo.exec(ctx, scope, "update data", query, args)
}

// selectList qualifies the requested columns with the table name. An empty
// request selects every column of T.
func (repo *Repository[T]) selectList(only []string) string {
	selected := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(only) > 0 && !slices.Contains(only, col) {
			continue
		}

		selected = append(selected, repo.table+"."+col)
	}

	return strings.Join(selected, ", ")
}

func whereClause(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return "WHERE " + where, args
}

// dbColumns walks T's db tags, descending into embedded structs.
func dbColumns(reflectType reflect.Type) []string {
	var columns []string

	for i := range reflectType.NumField() {
		field := reflectType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, dbColumns(field.Type)...)

			continue
		}

		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			columns = append(columns, tag)
		}
	}

	return columns
}
