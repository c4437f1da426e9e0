package transport

import (
	"github.com/gofiber/fiber/v2"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/models"
)

func (s *HTTPServer) RecipeList(c *fiber.Ctx) error {
	recipes, err := s.recipes.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(models.NewRecipeListResp(recipes))
}

func (s *HTTPServer) RecipeGet(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	recipe, err := s.recipes.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(models.NewRecipeResp(recipe))
}

func (s *HTTPServer) RecipeSearch(c *fiber.Ctx) error {
	recipes, err := s.recipes.Search(c.UserContext(), c.Query("ingredient"), c.Query("title"))
	if err != nil {
		return err
	}
	return c.JSON(models.NewRecipeListResp(recipes))
}

func (s *HTTPServer) RecipeCreate(c *fiber.Ctx) error {
	req := models.RecipeReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	recipe, err := s.recipes.Create(c.UserContext(), GetSubject(c), req.Input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewRecipeResp(recipe))
}

func (s *HTTPServer) RecipeUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.RecipePatchReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	recipe, err := s.recipes.Update(c.UserContext(), GetSubject(c), id, req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(models.NewRecipeResp(recipe))
}

func (s *HTTPServer) RecipeDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.recipes.Delete(c.UserContext(), GetSubject(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
