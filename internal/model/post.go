package model

import "time"

// Post is written by exactly one pet.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Content   string    `json:"content" gorm:"type:text"`
	PetID     uint      `json:"petId" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Page is one slice of a paginated query. Number is zero-based.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage computes the page count from the total element count.
func NewPage[T any](content []T, number, size int, total int64) *Page[T] {
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	if content == nil {
		content = []T{}
	}
	return &Page[T]{
		Content:       content,
		Number:        number,
		Size:          size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
