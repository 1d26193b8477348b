package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

const (
	localUser  = "user"
	localToken = "access_token"
)

func setUser(c *fiber.Ctx, user dto.UserResponse, token string) {
	c.Locals(localUser, user)
	c.Locals(localToken, token)
}

// GetUser returns the user resolved by SupabaseAuth.
func GetUser(c *fiber.Ctx) (dto.UserResponse, error) {
	user, ok := c.Locals(localUser).(dto.UserResponse)
	if !ok || user.ID == "" {
		return dto.UserResponse{}, errors.New("no authenticated user in context")
	}
	return user, nil
}

// GetUserID extracts the authenticated user id from context.
func GetUserID(c *fiber.Ctx) (string, error) {
	user, err := GetUser(c)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// GetAccessToken returns the raw bearer token of the current request.
func GetAccessToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localToken).(string)
	return token
}
