package controller

import (
	"study-tracker-be/internal/dto"
	"study-tracker-be/internal/pkg/serverutils"
	"study-tracker-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAssayController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type assayController struct {
	service service.IAssayService
	folders folderHandlers
}

func NewAssayController(assayService service.IAssayService, folderService service.IFolderService) IAssayController {
	return &assayController{
		service: assayService,
		folders: folderHandlers{entityType: service.EntityTypeAssay, service: folderService},
	}
}

func (c *assayController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assay/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	c.folders.register(h)
}

func (c *assayController) GetAll(ctx *fiber.Ctx) error {
	var studyId *uuid.UUID
	if raw := ctx.Query("studyId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid studyId")
		}
		studyId = &id
	}

	res, err := c.service.GetAll(ctx.UserContext(), studyId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all assay", res))
}

func (c *assayController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateAssayRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create assay", res))
}

// Show resolves :id as an assay id first and as an assay code otherwise.
func (c *assayController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show assay", res))
}

func (c *assayController) Update(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateAssayRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	req.Id = id

	res, err := c.service.Update(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update assay", res))
}
