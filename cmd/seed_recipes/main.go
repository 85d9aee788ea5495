package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/recipe-organizer/backend/config"
	"github.com/pageza/recipe-organizer/backend/internal/database"
	"github.com/pageza/recipe-organizer/backend/internal/logger"
	"github.com/pageza/recipe-organizer/backend/internal/service"
)

var sampleRecipes = []service.NewRecipe{
	{
		Title:        "Classic Pancakes",
		Ingredients:  []string{"1 1/2 cups flour", "1 1/4 cups milk", "1 egg", "1 tbsp sugar", "3 1/2 tsp baking powder", "3 tbsp melted butter"},
		Instructions: "Whisk the dry ingredients. Beat in the milk, egg and butter until smooth. Cook ladlefuls on a hot griddle until bubbles form, then flip.",
	},
	{
		Title:        "Tomato Soup",
		Ingredients:  []string{"1 kg ripe tomatoes", "1 onion", "2 cloves garlic", "500 ml vegetable stock", "2 tbsp olive oil", "salt and pepper"},
		Instructions: "Soften the onion and garlic in oil. Add chopped tomatoes and stock and simmer for 20 minutes. Blend until smooth and season.",
	},
	{
		Title:        "Vanilla Milkshake",
		Ingredients:  []string{"3 scoops vanilla ice cream", "1 cup cold milk", "1/2 tsp vanilla extract"},
		Instructions: "Blend everything until thick and smooth. Serve immediately.",
	},
	{
		Title:        "Garlic Butter Pasta",
		Ingredients:  []string{"250 g spaghetti", "4 tbsp butter", "4 cloves garlic", "parsley", "parmesan"},
		Instructions: "Cook the pasta. Melt butter with sliced garlic, toss with the pasta and a splash of cooking water, then finish with parsley and parmesan.",
	},
	{
		Title:        "Masala Chai",
		Ingredients:  []string{"2 cups water", "1 cup milk", "2 tsp black tea", "2 cardamom pods", "1 small piece ginger", "sugar to taste"},
		Instructions: "Simmer water with the spices for 5 minutes. Add tea and milk, bring to a boil, sweeten and strain.",
	},
}

func main() {
	ownerEmail := flag.String("owner", "", "Email of the user who will own the seeded recipes (default: unowned)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logr, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync(logr)

	ctx := context.Background()
	store, err := database.New(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	var owner *string
	if *ownerEmail != "" {
		auth := service.NewAuthService(store.DB, cfg.JWTSecret, cfg.JWTExpiresIn)
		user, err := auth.GetUserByEmail(ctx, *ownerEmail)
		if err != nil {
			logr.Fatal("failed to look up owner", zap.Error(err))
		}
		if user == nil {
			logr.Fatal("owner not found", zap.String("email", *ownerEmail))
		}
		owner = &user.ID
	}

	recipes := service.NewRecipeService(store.DB)
	for _, r := range sampleRecipes {
		recipe, err := recipes.CreateRecipe(ctx, r, owner)
		if err != nil {
			logr.Fatal("failed to seed recipe", zap.String("title", r.Title), zap.Error(err))
		}
		logr.Info("seeded recipe", zap.String("id", recipe.ID), zap.String("title", recipe.Title))
	}
	logr.Info("seeding complete", zap.Int("count", len(sampleRecipes)))
}
