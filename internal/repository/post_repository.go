package repository

import (
	"context"

	"gorm.io/gorm"

	"animalsquad/internal/model"
)

// PostRepository reads posts by their owning pet.
type PostRepository interface {
	FindAllByPetID(ctx context.Context, petID uint, page, size int) (*model.Page[model.Post], error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// FindAllByPetID returns one zero-based page of the pet's posts, newest id first.
func (r *postRepository) FindAllByPetID(ctx context.Context, petID uint, page, size int) (*model.Page[model.Post], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&model.Post{}).Where("pet_id = ?", petID)
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var posts []model.Post
	if err := r.db.WithContext(ctx).
		Where("pet_id = ?", petID).
		Order("id DESC").
		Offset(page * size).
		Limit(size).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return model.NewPage(posts, page, size, total), nil
}
