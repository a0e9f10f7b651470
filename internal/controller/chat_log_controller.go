package controller

import (
	"errors"
	"strconv"

	"jyotchat-be/internal/pkg/serverutils"
	"jyotchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatLogController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type chatLogController struct {
	chatLogService service.IChatLogService
	jwtSecret      string
}

func NewChatLogController(chatLogService service.IChatLogService, jwtSecret string) IChatLogController {
	return &chatLogController{
		chatLogService: chatLogService,
		jwtSecret:      jwtSecret,
	}
}

func (c *chatLogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/logs")
	h.Use(serverutils.IdentityMiddleware(c.jwtSecret))
	h.Get("", c.List)
	h.Get(":id", c.Show)
}

func (c *chatLogController) List(ctx *fiber.Ctx) error {
	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("page_size", service.DefaultChatLogPageSize)

	res, err := c.chatLogService.List(ctx.UserContext(), serverutils.Identity(ctx), page, pageSize)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat logs", res))
}

func (c *chatLogController) Show(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}

	res, err := c.chatLogService.Show(ctx.UserContext(), serverutils.Identity(ctx), id)
	if err != nil {
		if errors.Is(err, service.ErrChatLogNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Chat log not found")
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat log", res))
}
