package models

import (
	"time"
)

// Recipe is a dish with its ingredients. UserID is nil for unowned recipes.
type Recipe struct {
	ID           string       `gorm:"type:varchar(36);primarykey" json:"id"`
	Title        string       `gorm:"not null" json:"title"`
	Ingredients  []Ingredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
	Instructions string       `gorm:"type:text;not null" json:"instructions"`
	ImageDataURL *string      `gorm:"column:image_data_url;type:text" json:"imageDataUrl,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;index" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updatedAt"`
	UserID       *string      `gorm:"type:varchar(36);index" json:"userId,omitempty"`
}

// Ingredient belongs to exactly one recipe. Position keeps the order the
// ingredients were submitted in.
type Ingredient struct {
	ID       string `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipeID string `gorm:"type:varchar(36);not null;index" json:"-"`
	Name     string `gorm:"not null" json:"name"`
	Position int    `gorm:"not null;default:0" json:"-"`
}

// IngredientNames returns the ingredient names in order.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		names[i] = ing.Name
	}
	return names
}

// OwnedBy reports whether the recipe belongs to userID.
func (r *Recipe) OwnedBy(userID string) bool {
	return r.UserID != nil && *r.UserID == userID
}
