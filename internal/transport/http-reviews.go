package transport

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/models"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/service"
)

func (s *HTTPServer) ReviewList(c *fiber.Ctx) error {
	reviews, err := s.reviews.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(models.NewReviewListResp(reviews))
}

func (s *HTTPServer) ReviewListByRecipe(c *fiber.Ctx) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return err
	}

	order := service.ReviewOrder{
		Highest: queryFlag(c, "highest"),
		Newest:  queryFlag(c, "newest"),
	}
	reviews, err := s.reviews.ListByRecipe(c.UserContext(), recipeID, order)
	if err != nil {
		return err
	}
	return c.JSON(models.NewReviewListResp(reviews))
}

func (s *HTTPServer) ReviewCreate(c *fiber.Ctx) error {
	recipeID, err := GetAndParseParam(c, "recipe_id")
	if err != nil {
		return err
	}
	req := models.ReviewReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	review, err := s.reviews.Create(c.UserContext(), GetSubject(c), recipeID, req.Input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewReviewResp(review))
}

func (s *HTTPServer) ReviewUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.ReviewPatchReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	review, err := s.reviews.Update(c.UserContext(), GetSubject(c), id, req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(models.NewReviewResp(review))
}

func (s *HTTPServer) ReviewDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.reviews.Delete(c.UserContext(), GetSubject(c), id); err != nil {
		return err
	}
	return c.JSON(models.MessageResp{Message: fmt.Sprintf("review with id %d successfully deleted", id)})
}
