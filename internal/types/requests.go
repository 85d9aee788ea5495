package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// IngredientList accepts ingredients either as bare names or as objects
// carrying a name, in any mix.
type IngredientList []string

func (l *IngredientList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ingredients must be an array: %w", err)
	}

	names := make(IngredientList, 0, len(raw))
	for i, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			names = append(names, name)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("ingredient %d must be a string or an object with a name", i)
		}
		names = append(names, obj.Name)
	}
	*l = names
	return nil
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Title        string         `json:"title"`
	Ingredients  IngredientList `json:"ingredients"`
	Instructions string         `json:"instructions"`
	ImageDataURL *string        `json:"imageDataUrl"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// Nil fields are left unchanged.
type UpdateRecipeRequest struct {
	Title        *string         `json:"title"`
	Ingredients  *IngredientList `json:"ingredients"`
	Instructions *string         `json:"instructions"`
	ImageDataURL *string         `json:"imageDataUrl"`
}

// RegisterRequest represents the request body for user registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
