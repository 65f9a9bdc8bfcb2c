package model

// Address is reference data looked up by its numeric code.
type Address struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Code int    `json:"code" gorm:"uniqueIndex;not null"`
	Name string `json:"name" gorm:"size:100;not null"`
}
