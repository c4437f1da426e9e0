package transport

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/db"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/models"
	"github.com/BenDavies1218/BenjaminDavies-T2A2/internal/service"
)

// catalogHandlers serves /ingredient and /allergy, which only differ in the service behind them.
type catalogHandlers[T any, PT interface {
	*T
	db.Named
}] struct {
	svc    *service.Catalog[T, PT]
	label  string
	plural string
}

func newCatalogHandlers[T any, PT interface {
	*T
	db.Named
}](svc *service.Catalog[T, PT], label, plural string) *catalogHandlers[T, PT] {
	return &catalogHandlers[T, PT]{svc: svc, label: label, plural: plural}
}

func (h *catalogHandlers[T, PT]) mount(g fiber.Router, requireAuth fiber.Handler) {
	g.Get("/", h.Search)
	g.Post("/", requireAuth, h.Create)
	g.Put("/:id<int>", requireAuth, h.Update)
	g.Patch("/:id<int>", requireAuth, h.Update)
	g.Delete("/delete", requireAuth, h.DeleteOrphans)
	g.Delete("/delete/:id<int>", requireAuth, h.DeleteByID)
}

func (h *catalogHandlers[T, PT]) Search(c *fiber.Ctx) error {
	rows, err := h.svc.Search(c.UserContext(), c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(models.NewNamedListResp[T, PT](rows))
}

func (h *catalogHandlers[T, PT]) Create(c *fiber.Ctx) error {
	req := models.NameReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	row, err := h.svc.Create(c.UserContext(), GetSubject(c), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(models.NewNamedResp(row))
}

// Update renames the row for every recipe that links to it.
func (h *catalogHandlers[T, PT]) Update(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.NameReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}

	row, err := h.svc.Update(c.UserContext(), GetSubject(c), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(models.NewNamedResp(row))
}

func (h *catalogHandlers[T, PT]) DeleteOrphans(c *fiber.Ctx) error {
	deleted, err := h.svc.DeleteOrphans(c.UserContext(), GetSubject(c))
	if err != nil {
		return err
	}
	return c.JSON(models.MessageResp{
		Message: fmt.Sprintf("%d %s without relations successfully deleted", deleted, h.plural),
	})
}

func (h *catalogHandlers[T, PT]) DeleteByID(c *fiber.Ctx) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteByID(c.UserContext(), GetSubject(c), id); err != nil {
		return err
	}
	return c.JSON(models.MessageResp{Message: fmt.Sprintf("%s with id %d successfully deleted", h.label, id)})
}
