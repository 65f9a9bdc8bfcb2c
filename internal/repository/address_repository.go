package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"animalsquad/internal/model"
)

// AddressRepository looks up and seeds address reference data.
type AddressRepository interface {
	FindByCode(ctx context.Context, code int) (*model.Address, error)
	Upsert(ctx context.Context, address *model.Address) (created bool, err error)
}

type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository creates a new address repository.
func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

// FindByCode returns gorm.ErrRecordNotFound for unknown codes.
func (r *addressRepository) FindByCode(ctx context.Context, code int) (*model.Address, error) {
	var address model.Address
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

// Upsert creates the address or renames the existing one with the same code.
func (r *addressRepository) Upsert(ctx context.Context, address *model.Address) (bool, error) {
	existing, err := r.FindByCode(ctx, address.Code)
	if err != nil && err != gorm.ErrRecordNotFound {
		return false, err
	}

	if existing != nil {
		existing.Name = address.Name
		if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
			return false, err
		}
		*address = *existing
		return false, nil
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(address).Error; err != nil {
		return false, err
	}
	return true, nil
}
