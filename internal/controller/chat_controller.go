package controller

import (
	"bufio"
	"errors"

	"jyotchat-be/internal/dto"
	"jyotchat-be/internal/pkg/serverutils"
	"jyotchat-be/internal/repository/contract"
	"jyotchat-be/internal/service"
	"jyotchat-be/pkg/stream"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Request(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	jwtSecret   string
}

func NewChatController(chatService service.IChatService, jwtSecret string) IChatController {
	return &chatController{
		chatService: chatService,
		jwtSecret:   jwtSecret,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(serverutils.IdentityMiddleware(c.jwtSecret))
	h.Post("", c.Chat)
	h.Post("request", c.Request)
}

func (c *chatController) parseRequest(ctx *fiber.Ctx) (*dto.ChatRequest, error) {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	req, err := c.parseRequest(ctx)
	if err != nil {
		return err
	}

	turn, err := c.chatService.StartTurn(ctx.UserContext(), serverutils.Identity(ctx), req)
	if err != nil {
		return toHTTPError(err)
	}

	for k, v := range stream.Headers {
		ctx.Set(k, v)
	}
	ctx.Status(fiber.StatusOK)
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		turn.Run(w)
	})
	return nil
}

func (c *chatController) Request(ctx *fiber.Ctx) error {
	req, err := c.parseRequest(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.Request(ctx.UserContext(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(res)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrNoMessages):
		return fiber.NewError(fiber.StatusBadRequest, "No messages provided")
	case errors.Is(err, service.ErrLastMessageNotUser):
		return fiber.NewError(fiber.StatusBadRequest, "Last message must be from user")
	case errors.Is(err, contract.ErrTurnInProgress):
		return fiber.NewError(fiber.StatusConflict, "A response is already being generated for this session")
	default:
		return err
	}
}
