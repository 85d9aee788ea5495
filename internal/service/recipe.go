package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/pageza/recipe-organizer/backend/internal/models"
)

// NewRecipe is the input for creating a recipe.
type NewRecipe struct {
	Title        string
	Ingredients  []string
	Instructions string
	ImageDataURL *string
}

// RecipePatch holds the fields to change on update. Nil fields keep their
// stored value; a non-nil Ingredients replaces the whole ingredient set.
type RecipePatch struct {
	Title        *string
	Ingredients  *[]string
	Instructions *string
	ImageDataURL *string
}

// RecipeService handles recipe operations
type RecipeService struct {
	db    *gorm.DB
	now   func() time.Time
	newID func() string
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, opts ...Option) *RecipeService {
	o := applyOptions(opts)
	return &RecipeService{
		db:    db,
		now:   o.now,
		newID: o.newID,
	}
}

func orderedIngredients(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// ListRecipes returns recipes newest first with their ingredients. A
// non-nil ownerID restricts the result to that user's recipes only.
func (s *RecipeService) ListRecipes(ctx context.Context, ownerID *string) ([]*models.Recipe, error) {
	query := s.db.WithContext(ctx).
		Preload("Ingredients", orderedIngredients).
		Order("created_at DESC")
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}

	var recipes []*models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipe retrieves a recipe by ID. A missing recipe returns nil, nil.
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	return s.getRecipe(s.db.WithContext(ctx), id)
}

func (s *RecipeService) getRecipe(db *gorm.DB, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := db.Preload("Ingredients", orderedIngredients).
		Where("id = ?", id).
		Take(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// CreateRecipe validates and stores a recipe and its ingredients.
func (s *RecipeService) CreateRecipe(ctx context.Context, input NewRecipe, ownerID *string) (*models.Recipe, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("Title is required")
	}
	names := normalizeIngredients(input.Ingredients)
	if len(names) == 0 {
		return nil, invalid("At least one ingredient is required")
	}
	instructions := strings.TrimSpace(input.Instructions)
	if instructions == "" {
		return nil, invalid("Instructions are required")
	}

	now := timestamp(s.now())
	recipe := &models.Recipe{
		ID:           s.newID(),
		Title:        title,
		Instructions: instructions,
		ImageDataURL: imageRef(input.ImageDataURL),
		CreatedAt:    now,
		UpdatedAt:    now,
		UserID:       ownerID,
	}
	recipe.Ingredients = s.buildIngredients(recipe.ID, names)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		return tx.Create(&recipe.Ingredients).Error
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// UpdateRecipe applies patch to the recipe with the given id. A missing
// recipe returns nil, nil. The ownership check and the write are separate
// statements, so a concurrent delete or update between them is not
// detected and the last write wins.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, patch RecipePatch, requesterID *string) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)

	current, err := s.getRecipe(db, id)
	if err != nil || current == nil {
		return nil, err
	}
	if err := authorize(current, requesterID, "update"); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("Title must be a non-empty string")
		}
		updates["title"] = title
	}
	var names []string
	if patch.Ingredients != nil {
		names = normalizeIngredients(*patch.Ingredients)
		if len(names) == 0 {
			return nil, invalid("Ingredients must be a non-empty array")
		}
	}
	if patch.Instructions != nil {
		instructions := strings.TrimSpace(*patch.Instructions)
		if instructions == "" {
			return nil, invalid("Instructions must be a non-empty string")
		}
		updates["instructions"] = instructions
	}
	if patch.ImageDataURL != nil {
		updates["image_data_url"] = imageRef(patch.ImageDataURL)
	}

	// updatedAt must move forward even when the clock has not.
	now := timestamp(s.now())
	if !now.After(current.UpdatedAt) {
		now = current.UpdatedAt.Add(time.Microsecond)
	}
	updates["updated_at"] = now

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if patch.Ingredients == nil {
			return nil
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Ingredient{}).Error; err != nil {
			return err
		}
		ingredients := s.buildIngredients(id, names)
		return tx.Create(&ingredients).Error
	})
	if err != nil {
		return nil, err
	}

	return s.getRecipe(db, id)
}

// DeleteRecipe removes a recipe and, through the foreign key, its
// ingredients. It reports whether a recipe was removed.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string, requesterID *string) (bool, error) {
	db := s.db.WithContext(ctx)

	if requesterID != nil {
		current, err := s.getRecipe(db, id)
		if err != nil || current == nil {
			return false, err
		}
		if err := authorize(current, requesterID, "delete"); err != nil {
			return false, err
		}
	}

	result := db.Where("id = ?", id).Delete(&models.Recipe{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SearchRecipes filters ListRecipes(ownerID) down to recipes whose title,
// instructions or any ingredient name contains query, ignoring case.
func (s *RecipeService) SearchRecipes(ctx context.Context, query string, ownerID *string) ([]*models.Recipe, error) {
	recipes, err := s.ListRecipes(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(query)
	matches := make([]*models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if matchesRecipe(fold, r, needle) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

func matchesRecipe(fold cases.Caser, r *models.Recipe, needle string) bool {
	if strings.Contains(fold.String(r.Title), needle) ||
		strings.Contains(fold.String(r.Instructions), needle) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(fold.String(ing.Name), needle) {
			return true
		}
	}
	return false
}

// authorize checks ownership before a mutation. A nil requester skips the
// check, and so does an unowned recipe. This is a trust boundary: the HTTP
// layer must pass the authenticated user whenever a request carries one.
func authorize(recipe *models.Recipe, requesterID *string, action string) error {
	if requesterID == nil || recipe.UserID == nil {
		return nil
	}
	if !recipe.OwnedBy(*requesterID) {
		return &AuthorizationError{Action: action}
	}
	return nil
}

func (s *RecipeService) buildIngredients(recipeID string, names []string) []models.Ingredient {
	ingredients := make([]models.Ingredient, len(names))
	for i, name := range names {
		ingredients[i] = models.Ingredient{
			ID:       s.newID(),
			RecipeID: recipeID,
			Name:     name,
			Position: i,
		}
	}
	return ingredients
}

// normalizeIngredients trims names and drops blank ones.
func normalizeIngredients(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if n := strings.TrimSpace(name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// imageRef maps an empty reference to no image.
func imageRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := strings.TrimSpace(*ref)
	if v == "" {
		return nil
	}
	return &v
}
