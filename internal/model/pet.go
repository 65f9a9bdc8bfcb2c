package model

import (
	"fmt"
	"time"
)

// Pet is the account aggregate of the pet social network.
type Pet struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	LoginID      string    `json:"loginId" gorm:"uniqueIndex;size:50;not null"`
	Password     string    `json:"-" gorm:"size:255;not null"` // bcrypt hash, never exposed
	PetName      string    `json:"petName" gorm:"size:100;not null"`
	Age          int       `json:"age"`
	Gender       Gender    `json:"gender" gorm:"size:10"`
	Species      Species   `json:"species" gorm:"size:10;not null;index"`
	ProfileImage string    `json:"profileImage" gorm:"size:512"`
	AddressID    uint      `json:"-" gorm:"not null;index"`
	Address      Address   `json:"address" gorm:"foreignKey:AddressID"`
	Roles        Roles     `json:"roles" gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PetPatch carries a partial update. Nil fields are left untouched.
type PetPatch struct {
	ID          uint
	PetName     *string
	Age         *int
	Gender      *Gender
	Species     *Species
	AddressCode *int
}

// Gender of a pet.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// ParseGender converts a raw value into a Gender.
func ParseGender(raw string) (Gender, error) {
	g := Gender(raw)
	if g != GenderMale && g != GenderFemale {
		return "", fmt.Errorf("unknown gender: %q", raw)
	}
	return g, nil
}
