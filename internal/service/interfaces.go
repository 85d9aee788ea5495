package service

import (
	"context"

	"github.com/pageza/recipe-organizer/backend/internal/models"
	"github.com/pageza/recipe-organizer/backend/internal/types"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context, ownerID *string) ([]*models.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, input NewRecipe, ownerID *string) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, patch RecipePatch, requesterID *string) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id string, requesterID *string) (bool, error)
	SearchRecipes(ctx context.Context, query string, ownerID *string) ([]*models.Recipe, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IImageService defines the interface for image uploads
type IImageService interface {
	Store(ctx context.Context, filename string, data []byte) (*UploadedImage, error)
}
