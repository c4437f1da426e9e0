package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/auth"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/config"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db/dbtest"
)

const testPassword = "Coderacademy1!"

type fixture struct {
	ctx         context.Context
	db          *gorm.DB
	tokens      *auth.Tokens
	users       *Users
	ingredients *Ingredients
	allergies   *Allergies
	recipes     *Recipes
	reviews     *Reviews
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := dbtest.New(t)
	l := zap.NewNop().Sugar()
	cfg := &config.Config{
		JWTSecret:  "secret",
		TokenTTL:   21 * 24 * time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	tokens := auth.NewTokens(cfg)

	return &fixture{
		ctx:         context.Background(),
		db:          gdb,
		tokens:      tokens,
		users:       NewUsers(gdb, tokens, cfg, l),
		ingredients: NewIngredients(gdb, l),
		allergies:   NewAllergies(gdb, l),
		recipes:     NewRecipes(gdb, l),
		reviews:     NewReviews(gdb, l),
	}
}

func (f *fixture) user(t *testing.T, email string, admin bool) *db.User {
	t.Helper()
	u, err := f.users.Register(f.ctx, RegisterInput{Email: email, Password: testPassword, IsAdmin: admin})
	require.NoError(t, err)
	return u
}

func (f *fixture) recipe(t *testing.T, ownerID uint64, title string, ingredients map[string]string, allergies ...string) *db.Recipe {
	t.Helper()
	r, err := f.recipes.Create(f.ctx, ownerID, RecipeInput{
		Title:        title,
		Instructions: "Mix everything, then cook until done.",
		Ingredients:  ingredients,
		Allergies:    allergies,
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func assertKind(t *testing.T, want Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, KindOf(err), err.Error())
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }
