package controller

import (
	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/pkg/serverutils"
	"study-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICollaboratorController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
}

type collaboratorController struct {
	service service.ICollaboratorService
}

func NewCollaboratorController(service service.ICollaboratorService) ICollaboratorController {
	return &collaboratorController{service: service}
}

func (c *collaboratorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/collaborator/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
}

func (c *collaboratorController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetAll(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all collaborator", res))
}

func (c *collaboratorController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateCollaboratorRequest
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
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create collaborator", res))
}
