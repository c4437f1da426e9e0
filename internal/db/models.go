package db

import (
	"time"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Name     *string
		Email    string   `gorm:"unique;not null"`
		Password string   `gorm:"not null"`
		IsAdmin  bool     `gorm:"not null;default:false"`
		Recipes  []Recipe `gorm:"constraint:OnDelete:CASCADE"`
		Reviews  []Review `gorm:"constraint:OnDelete:CASCADE"`
	}

	Recipe struct {
		GormForkedModel
		Title        string `gorm:"size:100;not null;uniqueIndex"`
		Difficulty   *int
		ServingSize  *int
		Instructions string `gorm:"type:text;not null"`
		UserID       uint64 `gorm:"not null;index"`
		User         User
		Reviews      []Review           `gorm:"constraint:OnDelete:CASCADE"`
		Ingredients  []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
		Allergies    []RecipeAllergy    `gorm:"constraint:OnDelete:CASCADE"`
	}

	Ingredient struct {
		ID      uint64             `gorm:"primarykey"`
		Name    string             `gorm:"size:50;not null;uniqueIndex"`
		Recipes []RecipeIngredient `gorm:"constraint:OnDelete:RESTRICT"`
	}

	Allergy struct {
		ID      uint64          `gorm:"primarykey"`
		Name    string          `gorm:"size:50;not null;uniqueIndex"`
		Recipes []RecipeAllergy `gorm:"constraint:OnDelete:RESTRICT"`
	}

	RecipeIngredient struct {
		ID           uint64 `gorm:"primarykey"`
		RecipeID     uint64 `gorm:"not null;uniqueIndex:uidx_recipe_ingredient"`
		IngredientID uint64 `gorm:"not null;uniqueIndex:uidx_recipe_ingredient;index"`
		Amount       string `gorm:"size:50;not null"`
		Ingredient   Ingredient
	}

	RecipeAllergy struct {
		ID        uint64 `gorm:"primarykey"`
		RecipeID  uint64 `gorm:"not null;uniqueIndex:uidx_recipe_allergy"`
		AllergyID uint64 `gorm:"not null;uniqueIndex:uidx_recipe_allergy;index"`
		Allergy   Allergy
	}

	Review struct {
		GormForkedModel
		Details  string `gorm:"size:500;not null"`
		Rating   int    `gorm:"not null"`
		UserID   uint64 `gorm:"not null;index"`
		RecipeID uint64 `gorm:"not null;index"`
		User     User
	}
)

func (Allergy) TableName() string { return "allergies" }

func (RecipeAllergy) TableName() string { return "recipe_allergies" }

// Named is implemented by the catalog entities that are looked up by their unique name.
type Named interface {
	GetID() uint64
	GetName() string
	SetName(name string)
}

func (i *Ingredient) GetID() uint64 { return i.ID }
func (i *Ingredient) GetName() string { return i.Name }
func (i *Ingredient) SetName(name string) { i.Name = name }
func (a *Allergy) GetID() uint64 { return a.ID }
func (a *Allergy) GetName() string { return a.Name }
func (a *Allergy) SetName(name string) { a.Name = name }

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Recipe{},
		&Ingredient{},
		&Allergy{},
		&RecipeIngredient{},
		&RecipeAllergy{},
		&Review{},
	}
}
