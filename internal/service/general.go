package service

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
)

var Module = fx.Provide(
	NewUsers,
	NewIngredients,
	NewAllergies,
	NewRecipes,
	NewReviews,
)

// unitOfWork runs fn in one transaction. Every write of an operation goes through tx and is
// committed once when fn returns nil, or rolled back entirely when it returns an error.
func unitOfWork(ctx context.Context, gdb *gorm.DB, fn func(tx *gorm.DB) error) error {
	return gdb.WithContext(ctx).Transaction(fn)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsFold matches rows whose column holds query as a literal, case-insensitive substring.
func containsFold(column, query string) squirrel.Sqlizer {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	return squirrel.Expr("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern)
}

// deleteRecipes removes recipes together with their links and reviews.
func deleteRecipes(tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("recipe_id IN ?", ids).Delete(&db.RecipeIngredient{}).Error; err != nil {
		return errors.Wrap(err, "delete recipe ingredients")
	}
	if err := tx.Where("recipe_id IN ?", ids).Delete(&db.RecipeAllergy{}).Error; err != nil {
		return errors.Wrap(err, "delete recipe allergies")
	}
	if err := tx.Where("recipe_id IN ?", ids).Delete(&db.Review{}).Error; err != nil {
		return errors.Wrap(err, "delete recipe reviews")
	}
	if err := tx.Where("id IN ?", ids).Delete(&db.Recipe{}).Error; err != nil {
		return errors.Wrap(err, "delete recipes")
	}
	return nil
}

func bcryptGen(pass string, cost int) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), cost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}
