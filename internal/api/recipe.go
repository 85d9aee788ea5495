package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-organizer/backend/internal/middleware"
	"github.com/pageza/recipe-organizer/backend/internal/models"
	"github.com/pageza/recipe-organizer/backend/internal/service"
	"github.com/pageza/recipe-organizer/backend/internal/types"
)

type RecipeHandler struct {
	recipes       service.IRecipeService
	tokens        middleware.TokenValidator
	createLimiter middleware.Limiter
	log           *zap.Logger
}

// NewRecipeHandler wires the recipe routes. createLimiter may be nil to
// disable rate limiting of recipe creation.
func NewRecipeHandler(recipes service.IRecipeService, tokens middleware.TokenValidator, createLimiter middleware.Limiter, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		tokens:        tokens,
		createLimiter: createLimiter,
		log:           log,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.OptionalAuth(h.tokens)

	create := []gin.HandlerFunc{auth}
	if h.createLimiter != nil {
		create = append(create, middleware.RateLimit(h.createLimiter, h.log))
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", auth, h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", create...)
		recipes.PUT("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
	}
}

// ListRecipes returns all recipes, or only the caller's when authenticated.
// A non-empty ?search= narrows the result to matching recipes.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	owner := middleware.UserID(c)

	var (
		recipes []*models.Recipe
		err     error
	)
	if search := c.Query("search"); search != "" {
		recipes, err = h.recipes.SearchRecipes(c.Request.Context(), search, owner)
	} else {
		recipes, err = h.recipes.ListRecipes(c.Request.Context(), owner)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, types.List(recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id := c.Param("id")
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if recipe == nil {
		notFound(c, id)
		return
	}

	c.JSON(http.StatusOK, types.Success(recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), service.NewRecipe{
		Title:        req.Title,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		ImageDataURL: req.ImageDataURL,
	}, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("recipe created", zap.String("recipe_id", recipe.ID))
	c.JSON(http.StatusCreated, types.Success(recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id := c.Param("id")

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	patch := service.RecipePatch{
		Title:        req.Title,
		Instructions: req.Instructions,
		ImageDataURL: req.ImageDataURL,
	}
	if req.Ingredients != nil {
		names := []string(*req.Ingredients)
		patch.Ingredients = &names
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), id, patch, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if recipe == nil {
		notFound(c, id)
		return
	}

	c.JSON(http.StatusOK, types.Success(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.recipes.DeleteRecipe(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !deleted {
		notFound(c, id)
		return
	}

	h.log.Info("recipe deleted", zap.String("recipe_id", id))
	c.JSON(http.StatusOK, types.Response{Status: types.StatusSuccess, Message: "Recipe deleted successfully"})
}

func notFound(c *gin.Context, id string) {
	c.JSON(http.StatusNotFound, types.Error(fmt.Sprintf("Recipe with ID %s not found", id)))
}
