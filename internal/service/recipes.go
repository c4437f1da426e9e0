package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/validation"
)

const (
	titleMaxLength        = 100
	instructionsMaxLength = 2000
	amountMaxLength       = 50

	DifficultyMin  = 0
	DifficultyMax  = 10
	ServingSizeMin = 1
	ServingSizeMax = 100
)

type (
	Recipes struct {
		db     *gorm.DB
		logger *zap.SugaredLogger
	}

	// RecipeInput carries ingredients as name to amount. Repeated allergy names collapse into one link.
	RecipeInput struct {
		Title        string
		Difficulty   *int
		ServingSize  *int
		Instructions string
		Ingredients  map[string]string
		Allergies    []string
	}

	// RecipePatch follows patch semantics for scalar fields: nil, empty and zero values leave the
	// stored value alone. A non-nil Ingredients or Allergies replaces every existing link, so an
	// empty but present list removes them all.
	RecipePatch struct {
		Title        *string
		Difficulty   *int
		ServingSize  *int
		Instructions *string
		Ingredients  map[string]string
		Allergies    []string
	}
)

func NewRecipes(gdb *gorm.DB, l *zap.SugaredLogger) *Recipes {
	return &Recipes{db: gdb, logger: l.Named("recipes")}
}

func (s *Recipes) Create(ctx context.Context, subjectID uint64, in RecipeInput) (*db.Recipe, error) {
	v := validation.NewSet()
	v.Check("title", in.Title, validation.String(2, titleMaxLength, validation.Extended))
	v.Check("instructions", in.Instructions, validation.Text(2, instructionsMaxLength))
	if in.Difficulty != nil {
		v.Check("difficulty", *in.Difficulty, validation.Int(DifficultyMin, DifficultyMax))
	}
	if in.ServingSize != nil {
		v.Check("serving_size", *in.ServingSize, validation.Int(ServingSizeMin, ServingSizeMax))
	}
	checkIngredients(v, in.Ingredients)
	checkAllergies(v, in.Allergies)
	if err := invalid(v.Err()); err != nil {
		return nil, err
	}

	var recipe *db.Recipe
	err := unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		if err := ensureTitleFree(tx, in.Title, 0); err != nil {
			return err
		}
		owner, err := findUser(tx, subjectID)
		if err != nil {
			return err
		}

		model := db.Recipe{
			Title:        in.Title,
			Difficulty:   in.Difficulty,
			ServingSize:  in.ServingSize,
			Instructions: in.Instructions,
			UserID:       owner.ID,
		}
		if err := tx.Omit(clause.Associations).Create(&model).Error; err != nil {
			return titleErr(err, in.Title, "create recipe")
		}

		if err := linkIngredients(tx, model.ID, in.Ingredients); err != nil {
			return err
		}
		if err := linkAllergies(tx, model.ID, in.Allergies); err != nil {
			return err
		}

		recipe, err = loadRecipe(tx, model.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("recipe created", "id", recipe.ID, "owner", recipe.UserID)
	return recipe, nil
}

func (s *Recipes) Get(ctx context.Context, id uint64) (*db.Recipe, error) {
	return loadRecipe(s.db.WithContext(ctx), id)
}

func (s *Recipes) List(ctx context.Context) ([]db.Recipe, error) {
	recipes := make([]db.Recipe, 0)
	if err := preloadRecipe(s.db.WithContext(ctx)).Order("id").Find(&recipes).Error; err != nil {
		return nil, errors.Wrap(err, "list recipes")
	}
	return recipes, nil
}

// Search takes exactly one of ingredient or title and matches it case-insensitively by substring.
func (s *Recipes) Search(ctx context.Context, ingredient, title string) ([]db.Recipe, error) {
	ingredient = strings.TrimSpace(ingredient)
	title = strings.TrimSpace(title)

	q := squirrel.Select("r.id").Distinct().From("recipes r").OrderBy("r.id")
	var missMsg string
	switch {
	case ingredient != "" && title != "":
		return nil, badRequest("search by either ingredient or title, not both")
	case ingredient != "":
		q = q.
			Join("recipe_ingredients ri ON ri.recipe_id = r.id").
			Join("ingredients i ON i.id = ri.ingredient_id").
			Where(containsFold("i.name", ingredient))
		missMsg = fmt.Sprintf("no recipes found with the ingredient '%s'", ingredient)
	case title != "":
		q = q.Where(containsFold("r.title", title))
		missMsg = fmt.Sprintf("no recipes found with the title '%s'", title)
	default:
		return nil, badRequest("provide an ingredient or a title to search by")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	tx := s.db.WithContext(ctx)
	ids := make([]uint64, 0)
	if err := tx.Raw(sql, args...).Scan(&ids).Error; err != nil {
		return nil, errors.Wrap(err, "search recipes")
	}
	if len(ids) == 0 {
		return nil, notFound("%s", missMsg)
	}

	recipes := make([]db.Recipe, 0, len(ids))
	if err := preloadRecipe(tx).Where("id IN ?", ids).Order("id").Find(&recipes).Error; err != nil {
		return nil, errors.Wrap(err, "load recipes")
	}
	return recipes, nil
}

func (s *Recipes) Update(ctx context.Context, subjectID, id uint64, patch RecipePatch) (*db.Recipe, error) {
	var recipe *db.Recipe
	err := unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		current, err := findRecipe(tx, id)
		if err != nil {
			return err
		}
		if _, err := RequireOwnerOrAdmin(tx, subjectID, current.UserID); err != nil {
			return err
		}

		v := validation.NewSet()
		updates := map[string]interface{}{}
		if present(patch.Title) {
			v.Check("title", *patch.Title, validation.String(2, titleMaxLength, validation.Extended))
			updates["title"] = *patch.Title
		}
		if present(patch.Instructions) {
			v.Check("instructions", *patch.Instructions, validation.Text(2, instructionsMaxLength))
			updates["instructions"] = *patch.Instructions
		}
		if patch.Difficulty != nil && *patch.Difficulty != 0 {
			v.Check("difficulty", *patch.Difficulty, validation.Int(DifficultyMin, DifficultyMax))
			updates["difficulty"] = *patch.Difficulty
		}
		if patch.ServingSize != nil && *patch.ServingSize != 0 {
			v.Check("serving_size", *patch.ServingSize, validation.Int(ServingSizeMin, ServingSizeMax))
			updates["serving_size"] = *patch.ServingSize
		}
		if patch.Ingredients != nil {
			checkIngredients(v, patch.Ingredients)
		}
		if patch.Allergies != nil {
			checkAllergies(v, patch.Allergies)
		}
		if err := invalid(v.Err()); err != nil {
			return err
		}

		if present(patch.Title) {
			if err := ensureTitleFree(tx, *patch.Title, current.ID); err != nil {
				return err
			}
		}
		if len(updates) != 0 {
			if err := tx.Model(current).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return titleErr(err, fmt.Sprint(updates["title"]), "update recipe")
			}
		}

		if patch.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", current.ID).Delete(&db.RecipeIngredient{}).Error; err != nil {
				return errors.Wrap(err, "clear recipe ingredients")
			}
			if err := linkIngredients(tx, current.ID, patch.Ingredients); err != nil {
				return err
			}
		}
		if patch.Allergies != nil {
			if err := tx.Where("recipe_id = ?", current.ID).Delete(&db.RecipeAllergy{}).Error; err != nil {
				return errors.Wrap(err, "clear recipe allergies")
			}
			if err := linkAllergies(tx, current.ID, patch.Allergies); err != nil {
				return err
			}
		}

		recipe, err = loadRecipe(tx, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// Delete removes the recipe with its ingredient links, allergy links and reviews in one transaction.
func (s *Recipes) Delete(ctx context.Context, subjectID, id uint64) error {
	err := unitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		recipe, err := findRecipe(tx, id)
		if err != nil {
			return err
		}
		if _, err := RequireOwnerOrAdmin(tx, subjectID, recipe.UserID); err != nil {
			return err
		}
		return deleteRecipes(tx, []uint64{recipe.ID})
	})
	if err != nil {
		return err
	}

	s.logger.Infow("recipe deleted", "id", id)
	return nil
}

func checkIngredients(v *validation.Set, ingredients map[string]string) {
	for _, name := range sortedKeys(ingredients) {
		v.Check("ingredients", name, catalogNameRule())
		v.Check("ingredients."+name, ingredients[name], validation.Text(1, amountMaxLength))
	}
}

func checkAllergies(v *validation.Set, allergies []string) {
	for _, name := range allergies {
		v.Check("allergies", name, catalogNameRule())
	}
}

func linkIngredients(tx *gorm.DB, recipeID uint64, ingredients map[string]string) error {
	for _, name := range sortedKeys(ingredients) {
		ingredientID, err := findOrCreateByName[db.Ingredient](tx, name)
		if err != nil {
			return err
		}
		link := db.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ingredientID,
			Amount:       ingredients[name],
		}
		if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
			return errors.Wrap(err, "link ingredient")
		}
	}
	return nil
}

func linkAllergies(tx *gorm.DB, recipeID uint64, allergies []string) error {
	seen := make(map[string]struct{}, len(allergies))
	for _, name := range allergies {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		allergyID, err := findOrCreateByName[db.Allergy](tx, name)
		if err != nil {
			return err
		}
		link := db.RecipeAllergy{
			RecipeID:  recipeID,
			AllergyID: allergyID,
		}
		if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
			return errors.Wrap(err, "link allergy")
		}
	}
	return nil
}

// ensureTitleFree enforces title uniqueness ahead of the unique index so the caller gets a
// readable conflict. exceptID skips the recipe being renamed.
func ensureTitleFree(tx *gorm.DB, title string, exceptID uint64) error {
	var count int64
	q := tx.Model(&db.Recipe{}).Where("title = ?", title)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "check title")
	}
	if count > 0 {
		return conflict("a recipe titled '%s' already exists", title)
	}
	return nil
}

func titleErr(err error, title, op string) error {
	if errors.Is(db.Classify(err), db.ErrUniqueViolation) {
		return conflict("a recipe titled '%s' already exists", title)
	}
	return errors.Wrap(err, op)
}

func preloadRecipe(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("User").
		Preload("Reviews", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC, id DESC") }).
		Preload("Reviews.User").
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Ingredients.Ingredient").
		Preload("Allergies", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Allergies.Allergy")
}

func loadRecipe(tx *gorm.DB, id uint64) (*db.Recipe, error) {
	recipe := db.Recipe{}
	res := preloadRecipe(tx).Limit(1).Find(&recipe, id)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "load recipe")
	}
	if res.RowsAffected == 0 {
		return nil, notFound("recipe with id %d couldn't be found", id)
	}
	return &recipe, nil
}

func findRecipe(tx *gorm.DB, id uint64) (*db.Recipe, error) {
	recipe := db.Recipe{}
	res := tx.Limit(1).Find(&recipe, id)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find recipe")
	}
	if res.RowsAffected == 0 {
		return nil, notFound("recipe with id %d couldn't be found", id)
	}
	return &recipe, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
