package controller

import (
	"study-tracker-be/internal/entity"
	"study-tracker-be/internal/pkg/serverutils"
	"study-tracker-be/internal/service"
	"study-tracker-be/pkg/storage"

	"github.com/gofiber/fiber/v2"
)

// folderHandlers serves the file and repair routes shared by studies and assays.
type folderHandlers struct {
	entityType string
	service    service.IFolderService
}

func (h folderHandlers) register(r fiber.Router) {
	r.Get(":id/files", h.ListFiles)
	r.Post(":id/files", h.UploadFile)
	r.Post(":id/repair/storage", h.repair(entity.FolderKindStorage))
	r.Post(":id/repair/notebook", h.repair(entity.FolderKindNotebook))
}

func (h folderHandlers) ListFiles(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamID(ctx)
	if err != nil {
		return err
	}
	res, err := h.service.ListFiles(ctx.UserContext(), h.entityType, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list "+h.entityType+" files", res))
}

func (h folderHandlers) UploadFile(ctx *fiber.Ctx) error {
	id, err := serverutils.ParamID(ctx)
	if err != nil {
		return err
	}
	header, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	body, err := header.Open()
	if err != nil {
		return err
	}
	defer body.Close()

	res, err := h.service.UploadFile(ctx.UserContext(), h.entityType, id, storage.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        body,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success upload "+h.entityType+" file", res))
}

func (h folderHandlers) repair(kind entity.FolderKind) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := serverutils.ParamID(ctx)
		if err != nil {
			return err
		}
		res, err := h.service.Repair(ctx.UserContext(), h.entityType, id, kind)
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Success repair "+h.entityType+" folder", res))
	}
}
