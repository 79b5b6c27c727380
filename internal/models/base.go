package models

// Base is the dough/sauce base a pizza references through BaseID
type Base struct {
	ID          int    `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}
