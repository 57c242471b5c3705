package controller

import (
	"study-tracker-be/internal/pkg/serverutils"
	"study-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INotebookController interface {
	RegisterRoutes(r fiber.Router)
	Templates(ctx *fiber.Ctx) error
	Folder(ctx *fiber.Ctx) error
}

type notebookController struct {
	service service.INotebookService
}

func NewNotebookController(service service.INotebookService) INotebookController {
	return &notebookController{service: service}
}

func (c *notebookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notebook/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("templates", c.Templates)
	h.Get("folders/:id", c.Folder)
}

func (c *notebookController) Templates(ctx *fiber.Ctx) error {
	res, err := c.service.Templates(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get notebook templates", res))
}

func (c *notebookController) Folder(ctx *fiber.Ctx) error {
	res, err := c.service.Folder(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show notebook folder", res))
}
