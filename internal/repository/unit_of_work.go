package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories are the repositories bound to one unit of work.
type Repositories struct {
	Pets      PetRepository
	Addresses AddressRepository
	Posts     PostRepository
}

// UnitOfWork runs fn in a single transaction, committing only when fn returns nil.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a GORM transaction-backed unit of work.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

// Do executes a function within a database transaction.
func (u *gormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newRepositories(tx))
	})
}

func newRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Pets:      NewPetRepository(db),
		Addresses: NewAddressRepository(db),
		Posts:     NewPostRepository(db),
	}
}
