package controller

import (
	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/pkg/serverutils"
	"study-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssayTypeController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type assayTypeController struct {
	service service.IAssayTypeService
}

func NewAssayTypeController(service service.IAssayTypeService) IAssayTypeController {
	return &assayTypeController{service: service}
}

func (c *assayTypeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assay-type/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
}

func (c *assayTypeController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetAll(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all assay type", res))
}

func (c *assayTypeController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateAssayTypeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create assay type", res))
}

func (c *assayTypeController) Show(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamID(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show assay type", res))
}
