package models

// Tag groups recipes (breakfast, dinner...). Name and slug are both unique.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:128;uniqueIndex;not null" json:"slug"`
}

// Ingredient is a catalog entry referenced by recipes, never created by them.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:128;not null;uniqueIndex:idx_ingredients_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:64;not null;uniqueIndex:idx_ingredients_name_unit" json:"measurement_unit"`
}
