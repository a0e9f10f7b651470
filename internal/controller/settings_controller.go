package controller

import (
	"errors"

	"jyotchat-be/internal/dto"
	"jyotchat-be/internal/pkg/serverutils"
	"jyotchat-be/internal/service"
	"jyotchat-be/pkg/chatengine"

	"github.com/gofiber/fiber/v2"
)

type ISettingsController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	UpdateTemperature(ctx *fiber.Ctx) error
	UpdateTopK(ctx *fiber.Ctx) error
	SelectModel(ctx *fiber.Ctx) error
}

type settingsController struct {
	settingsService service.ISettingsService
	jwtSecret       string
}

func NewSettingsController(settingsService service.ISettingsService, jwtSecret string) ISettingsController {
	return &settingsController{
		settingsService: settingsService,
		jwtSecret:       jwtSecret,
	}
}

func (c *settingsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/settings")
	// Open when no JWT secret is configured (local development).
	if c.jwtSecret != "" {
		h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	}
	h.Get("", c.Show)
	h.Post("temperature", c.UpdateTemperature)
	h.Post("topk", c.UpdateTopK)
	h.Post("model", c.SelectModel)
}

func (c *settingsController) Show(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Engine settings", c.settingsService.Get()))
}

func (c *settingsController) UpdateTemperature(ctx *fiber.Ctx) error {
	var req dto.UpdateTemperatureRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return err
	}
	res, err := c.settingsService.UpdateTemperature(&req)
	if err != nil {
		return settingsError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Temperature updated", res))
}

func (c *settingsController) UpdateTopK(ctx *fiber.Ctx) error {
	var req dto.UpdateTopKRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return err
	}
	res, err := c.settingsService.UpdateTopK(&req)
	if err != nil {
		return settingsError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Top-k updated", res))
}

func (c *settingsController) SelectModel(ctx *fiber.Ctx) error {
	var req dto.SelectModelRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return err
	}
	res, err := c.settingsService.SelectModel(&req)
	if err != nil {
		return settingsError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Model selected", res))
}

func bindAndValidate(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

func settingsError(err error) error {
	if errors.Is(err, chatengine.ErrInvalidTemperature) ||
		errors.Is(err, chatengine.ErrInvalidTopK) ||
		errors.Is(err, chatengine.ErrInvalidModel) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}
