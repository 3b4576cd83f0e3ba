package unitofwork

import (
	"context"

	"fidesia-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ExchangeRepository() contract.ExchangeRepository
	PassageRepository() contract.PassageRepository
	ActivityRepository() contract.ActivityRepository
}
