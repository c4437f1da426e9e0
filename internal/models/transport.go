package models

import (
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/service"
)

type (
	RegisterReq struct {
		Name     *string `json:"name"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		IsAdmin  bool    `json:"is_admin"`
	}

	LoginReq struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	UserPatchReq struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		IsAdmin  *bool   `json:"is_admin"`
	}

	// RecipeReq maps ingredient names to amounts, e.g. {"Pasta": "200g", "Eggs": "3"}.
	RecipeReq struct {
		Title        string            `json:"title"`
		Difficulty   *int              `json:"difficulty"`
		ServingSize  *int              `json:"serving_size"`
		Instructions string            `json:"instructions"`
		Ingredients  map[string]string `json:"ingredients"`
		Allergies    []string          `json:"allergies"`
	}

	// RecipePatchReq keeps Ingredients and Allergies nil when their key is missing from the body.
	// A present key, even with an empty value, replaces the stored links.
	RecipePatchReq struct {
		Title        *string           `json:"title"`
		Difficulty   *int              `json:"difficulty"`
		ServingSize  *int              `json:"serving_size"`
		Instructions *string           `json:"instructions"`
		Ingredients  map[string]string `json:"ingredients"`
		Allergies    []string          `json:"allergies"`
	}

	ReviewReq struct {
		Details string `json:"details"`
		Rating  *int   `json:"rating"`
	}

	ReviewPatchReq struct {
		Details *string `json:"details"`
		Rating  *int    `json:"rating"`
	}

	NameReq struct {
		Name string `json:"name"`
	}
)

func (r RegisterReq) Input() service.RegisterInput {
	return service.RegisterInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		IsAdmin:  r.IsAdmin,
	}
}

func (r UserPatchReq) Patch() service.UserPatch {
	return service.UserPatch{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		IsAdmin:  r.IsAdmin,
	}
}

func (r RecipeReq) Input() service.RecipeInput {
	return service.RecipeInput{
		Title:        r.Title,
		Difficulty:   r.Difficulty,
		ServingSize:  r.ServingSize,
		Instructions: r.Instructions,
		Ingredients:  r.Ingredients,
		Allergies:    r.Allergies,
	}
}

func (r RecipePatchReq) Patch() service.RecipePatch {
	return service.RecipePatch{
		Title:        r.Title,
		Difficulty:   r.Difficulty,
		ServingSize:  r.ServingSize,
		Instructions: r.Instructions,
		Ingredients:  r.Ingredients,
		Allergies:    r.Allergies,
	}
}

func (r ReviewReq) Input() service.ReviewInput {
	return service.ReviewInput{Details: r.Details, Rating: r.Rating}
}

func (r ReviewPatchReq) Patch() service.ReviewPatch {
	return service.ReviewPatch{Details: r.Details, Rating: r.Rating}
}
