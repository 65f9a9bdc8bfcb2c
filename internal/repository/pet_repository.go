package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"animalsquad/internal/model"
)

// ErrDuplicateKey is returned when a write violates a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

// PetRepository defines pet persistence operations. Lookups return
// gorm.ErrRecordNotFound when nothing matches.
type PetRepository interface {
	Create(ctx context.Context, pet *model.Pet) error
	Save(ctx context.Context, pet *model.Pet) error
	FindByID(ctx context.Context, id uint) (*model.Pet, error)
	FindByLoginID(ctx context.Context, loginID string) (*model.Pet, error)
	ExistsByLoginID(ctx context.Context, loginID string) (bool, error)
	DeleteByID(ctx context.Context, id uint) error
}

type petRepository struct {
	db *gorm.DB
}

// NewPetRepository builds a GORM-backed repository.
func NewPetRepository(db *gorm.DB) PetRepository {
	return &petRepository{db: db}
}

// Create inserts pet and assigns its id. The address must already exist.
func (r *petRepository) Create(ctx context.Context, pet *model.Pet) error {
	pet.AddressID = pet.Address.ID
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(pet).Error)
}

// Save writes every column of an existing pet.
func (r *petRepository) Save(ctx context.Context, pet *model.Pet) error {
	pet.AddressID = pet.Address.ID
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(pet).Error)
}

func (r *petRepository) FindByID(ctx context.Context, id uint) (*model.Pet, error) {
	var pet model.Pet
	if err := r.db.WithContext(ctx).Preload("Address").First(&pet, id).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

func (r *petRepository) FindByLoginID(ctx context.Context, loginID string) (*model.Pet, error) {
	var pet model.Pet
	if err := r.db.WithContext(ctx).Preload("Address").Where("login_id = ?", loginID).First(&pet).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

func (r *petRepository) ExistsByLoginID(ctx context.Context, loginID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Pet{}).Where("login_id = ?", loginID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *petRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Pet{}, id).Error
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return err
}
