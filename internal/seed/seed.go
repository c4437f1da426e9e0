// Package seed fills an empty database with demo users, recipes and reviews. Everything goes
// through the services so the usual validation and find-or-create rules apply.
package seed

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/service"
)

const Password = "Coderacademy1!"

var Module = fx.Provide(NewSeeder)

type (
	Seeder struct {
		db      *gorm.DB
		users   *service.Users
		recipes *service.Recipes
		reviews *service.Reviews
		logger  *zap.SugaredLogger
	}

	userSeed struct {
		name    string
		email   string
		isAdmin bool
	}

	recipeSeed struct {
		owner        int
		title        string
		difficulty   int
		servingSize  int
		instructions string
		ingredients  map[string]string
		allergies    []string
	}

	reviewSeed struct {
		author  int
		recipe  int
		details string
		rating  int
	}
)

var (
	users = []userSeed{
		{email: "admin@email.com", isAdmin: true},
		{name: "Benjamin Davies", email: "user1@email.com"},
		{name: "Luis Garcia", email: "user2@email.com"},
		{name: "Simon Smith", email: "user3@email.com"},
		{name: "Amy Chen", email: "user4@email.com"},
	}

	recipes = []recipeSeed{
		{
			owner:        1,
			title:        "Spaghetti Carbonara",
			difficulty:   4,
			servingSize:  2,
			instructions: "Boil the pasta. Fry the bacon. Whisk eggs with cheese, then toss everything together off the heat.",
			ingredients:  map[string]string{"Spaghetti": "200g", "Eggs": "3", "Bacon": "100g", "Parmesan": "50g"},
			allergies:    []string{"Gluten", "Egg", "Dairy"},
		},
		{
			owner:        2,
			title:        "Chicken Stir Fry",
			difficulty:   3,
			servingSize:  4,
			instructions: "Slice the chicken and vegetables. Stir fry on high heat, add soy sauce and serve with rice.",
			ingredients:  map[string]string{"Chicken Breast": "500g", "Broccoli": "1 head", "Soy Sauce": "3 tbsp", "Rice": "2 cups"},
			allergies:    []string{"Soy", "Gluten"},
		},
		{
			owner:        3,
			title:        "Pancakes",
			difficulty:   2,
			servingSize:  4,
			instructions: "Mix flour, eggs and milk into a batter. Rest for ten minutes, then cook on a hot pan.",
			ingredients:  map[string]string{"Flour": "1 cup", "Eggs": "2", "Milk": "1 cup"},
			allergies:    []string{"Gluten", "Egg", "Dairy"},
		},
		{
			owner:        4,
			title:        "Peanut Satay Noodles",
			difficulty:   5,
			servingSize:  2,
			instructions: "Cook the noodles. Whisk peanut butter, soy sauce and lime into a sauce and toss through.",
			ingredients:  map[string]string{"Noodles": "200g", "Peanut Butter": "3 tbsp", "Soy Sauce": "2 tbsp", "Lime": "1"},
			allergies:    []string{"Peanut", "Soy", "Gluten"},
		},
	}

	reviews = []reviewSeed{
		{author: 2, recipe: 0, details: "Creamy and rich, a new favourite.", rating: 9},
		{author: 3, recipe: 0, details: "Great recipe, needed more pepper.", rating: 7},
		{author: 1, recipe: 1, details: "Quick weeknight dinner.", rating: 8},
		{author: 4, recipe: 2, details: "Fluffy every time!", rating: 10},
		{author: 1, recipe: 3, details: "Eggsalent sauce, a bit too salty.", rating: 6},
	}
)

func NewSeeder(gdb *gorm.DB, u *service.Users, r *service.Recipes, rv *service.Reviews, l *zap.SugaredLogger) *Seeder {
	return &Seeder{db: gdb, users: u, recipes: r, reviews: rv, logger: l.Named("seed")}
}

// Reset drops every table and creates the schema again.
func (s *Seeder) Reset() error {
	if err := db.Drop(s.db); err != nil {
		return err
	}
	s.logger.Info("tables dropped")
	return db.Migrate(s.db)
}

// Seed does nothing when users already exist. It reports whether data was written.
func (s *Seeder) Seed(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "count users")
	}
	if count > 0 {
		s.logger.Infow("database already seeded", "users", count)
		return false, nil
	}

	userIDs := make([]uint64, len(users))
	for i, u := range users {
		var name *string
		if u.name != "" {
			name = &users[i].name
		}
		created, err := s.users.Register(ctx, service.RegisterInput{
			Name:     name,
			Email:    u.email,
			Password: Password,
			IsAdmin:  u.isAdmin,
		})
		if err != nil {
			return false, errors.Wrapf(err, "seed user %s", u.email)
		}
		userIDs[i] = created.ID
	}

	recipeIDs := make([]uint64, len(recipes))
	for i, r := range recipes {
		difficulty, servingSize := r.difficulty, r.servingSize
		created, err := s.recipes.Create(ctx, userIDs[r.owner], service.RecipeInput{
			Title:        r.title,
			Difficulty:   &difficulty,
			ServingSize:  &servingSize,
			Instructions: r.instructions,
			Ingredients:  r.ingredients,
			Allergies:    r.allergies,
		})
		if err != nil {
			return false, errors.Wrapf(err, "seed recipe %s", r.title)
		}
		recipeIDs[i] = created.ID
	}

	for _, r := range reviews {
		rating := r.rating
		_, err := s.reviews.Create(ctx, userIDs[r.author], recipeIDs[r.recipe], service.ReviewInput{
			Details: r.details,
			Rating:  &rating,
		})
		if err != nil {
			return false, errors.Wrapf(err, "seed review of %s", recipes[r.recipe].title)
		}
	}

	s.logger.Infow("tables seeded", "users", len(users), "recipes", len(recipes), "reviews", len(reviews))
	return true, nil
}
