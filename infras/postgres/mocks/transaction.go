package mocks

import (
	"context"

	"pms/infras/postgres"
)

type transactorImpl struct {
}

// WithTransaction implements postgres.Transactor.
func (t *transactorImpl) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func NewTransactor() postgres.Transactor {
	return &transactorImpl{}
}
