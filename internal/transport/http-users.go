package transport

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/models"
)

func (s *HTTPServer) Register(c *fiber.Ctx) error {
	req := models.RegisterReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	user, err := s.users.Register(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewUserResp(user))
}

func (s *HTTPServer) Login(c *fiber.Ctx) error {
	req := models.LoginReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	session, err := s.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(models.LoginResp{
		Email:   session.User.Email,
		Token:   session.Token,
		IsAdmin: session.User.IsAdmin,
	})
}

func (s *HTTPServer) UserList(c *fiber.Ctx) error {
	users, err := s.users.List(c.UserContext(), GetSubject(c))
	if err != nil {
		return err
	}
	return c.JSON(models.NewUserListResp(users))
}

func (s *HTTPServer) UserGet(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	user, err := s.users.Get(c.UserContext(), GetSubject(c), id)
	if err != nil {
		return err
	}
	return c.JSON(models.NewUserResp(user))
}

func (s *HTTPServer) UserUpdate(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.UserPatchReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	user, err := s.users.Update(c.UserContext(), GetSubject(c), id, req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(models.NewUserResp(user))
}

func (s *HTTPServer) UserDelete(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.users.Delete(c.UserContext(), GetSubject(c), id); err != nil {
		return err
	}
	return c.JSON(models.MessageResp{Message: fmt.Sprintf("user with id %d successfully deleted", id)})
}
