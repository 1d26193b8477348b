package handlers

import (
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := h.authService.Signup(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, "signup", "Failed to create account")
	}

	return c.JSON(dto.SignupResponse{Success: true, User: *user})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	session, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err, "login", "Failed to sign in")
	}

	return c.JSON(session)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.GetAccessToken(c)); err != nil {
		return respondError(c, err, "logout", "Failed to logout")
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := middleware.GetUser(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	return c.JSON(user)
}
