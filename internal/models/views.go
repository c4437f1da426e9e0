package models

import (
	"time"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
)

type (
	UserResp struct {
		ID      uint64    `json:"id"`
		Name    *string   `json:"name"`
		Email   string    `json:"email"`
		IsAdmin bool      `json:"is_admin"`
		Created time.Time `json:"created"`
	}

	LoginResp struct {
		Email   string `json:"email"`
		Token   string `json:"token"`
		IsAdmin bool   `json:"is_admin"`
	}

	OwnerResp struct {
		Name  *string `json:"name"`
		Email string  `json:"email"`
	}

	RecipeReviewResp struct {
		ID      uint64    `json:"id"`
		Details string    `json:"details"`
		Rating  int       `json:"rating"`
		Created time.Time `json:"created"`
	}

	RecipeIngredientResp struct {
		Name   string `json:"name"`
		Amount string `json:"amount"`
	}

	RecipeAllergyResp struct {
		Name string `json:"name"`
	}

	RecipeResp struct {
		ID           uint64                 `json:"id"`
		Title        string                 `json:"title"`
		User         OwnerResp              `json:"user"`
		Reviews      []RecipeReviewResp     `json:"reviews"`
		Ingredients  []RecipeIngredientResp `json:"ingredients"`
		Difficulty   *int                   `json:"difficulty"`
		ServingSize  *int                   `json:"serving_size"`
		Instructions string                 `json:"instructions"`
		Allergies    []RecipeAllergyResp    `json:"allergies"`
		Created      time.Time              `json:"created"`
	}

	ReviewResp struct {
		ID       uint64    `json:"id"`
		RecipeID uint64    `json:"recipe_id"`
		Details  string    `json:"details"`
		Rating   int       `json:"rating"`
		Created  time.Time `json:"created"`
		User     OwnerResp `json:"user"`
	}

	NamedResp struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}

	MessageResp struct {
		Message string `json:"message"`
	}
)

func NewUserResp(u *db.User) UserResp {
	return UserResp{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		Created: u.CreatedAt,
	}
}

func NewUserListResp(users []db.User) []UserResp {
	resp := make([]UserResp, len(users))
	for i := range users {
		resp[i] = NewUserResp(&users[i])
	}
	return resp
}

func NewOwnerResp(u *db.User) OwnerResp {
	return OwnerResp{Name: u.Name, Email: u.Email}
}

func NewRecipeResp(r *db.Recipe) RecipeResp {
	resp := RecipeResp{
		ID:           r.ID,
		Title:        r.Title,
		User:         NewOwnerResp(&r.User),
		Reviews:      make([]RecipeReviewResp, len(r.Reviews)),
		Ingredients:  make([]RecipeIngredientResp, len(r.Ingredients)),
		Difficulty:   r.Difficulty,
		ServingSize:  r.ServingSize,
		Instructions: r.Instructions,
		Allergies:    make([]RecipeAllergyResp, len(r.Allergies)),
		Created:      r.CreatedAt,
	}
	for i, review := range r.Reviews {
		resp.Reviews[i] = RecipeReviewResp{
			ID:      review.ID,
			Details: review.Details,
			Rating:  review.Rating,
			Created: review.CreatedAt,
		}
	}
	for i, link := range r.Ingredients {
		resp.Ingredients[i] = RecipeIngredientResp{Name: link.Ingredient.Name, Amount: link.Amount}
	}
	for i, link := range r.Allergies {
		resp.Allergies[i] = RecipeAllergyResp{Name: link.Allergy.Name}
	}
	return resp
}

func NewRecipeListResp(recipes []db.Recipe) []RecipeResp {
	resp := make([]RecipeResp, len(recipes))
	for i := range recipes {
		resp[i] = NewRecipeResp(&recipes[i])
	}
	return resp
}

func NewReviewResp(r *db.Review) ReviewResp {
	return ReviewResp{
		ID:       r.ID,
		RecipeID: r.RecipeID,
		Details:  r.Details,
		Rating:   r.Rating,
		Created:  r.CreatedAt,
		User:     NewOwnerResp(&r.User),
	}
}

func NewReviewListResp(reviews []db.Review) []ReviewResp {
	resp := make([]ReviewResp, len(reviews))
	for i := range reviews {
		resp[i] = NewReviewResp(&reviews[i])
	}
	return resp
}

func NewNamedResp(n db.Named) NamedResp {
	return NamedResp{ID: n.GetID(), Name: n.GetName()}
}

func NewNamedListResp[T any, PT interface {
	*T
	db.Named
}](rows []T) []NamedResp {
	resp := make([]NamedResp, len(rows))
	for i := range rows {
		resp[i] = NewNamedResp(PT(&rows[i]))
	}
	return resp
}
