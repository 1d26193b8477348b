package middleware

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/medtrack-backend/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const jwtContextKey = "jwt"

// SessionResolver resolves a bearer token to a user through the identity provider.
type SessionResolver interface {
	GetUser(ctx context.Context, token string) (*services.SupabaseUser, error)
}

// SupabaseAuth verifies the bearer token locally when the project's JWT secret
// is configured, and otherwise asks the provider's session endpoint.
func SupabaseAuth(cfg *config.Config, resolver SessionResolver) fiber.Handler {
	if cfg.SupabaseJWTSecret != "" {
		return localJWT(cfg.SupabaseJWTSecret)
	}
	return remoteSession(resolver)
}

func localJWT(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		ContextKey: jwtContextKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(jwtContextKey).(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c)
			}

			// The anon and service-role keys are valid JWTs too, but carry no subject.
			sub, _ := claims["sub"].(string)
			if sub == "" {
				return unauthorized(c)
			}

			email, _ := claims["email"].(string)
			var name string
			if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
				name, _ = meta["name"].(string)
			}

			setUser(c, dto.UserResponse{ID: sub, Email: email, Name: name}, token.Raw)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

func remoteSession(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c)
		}

		user, err := resolver.GetUser(c.UserContext(), token)
		if err != nil {
			return unauthorized(c)
		}

		setUser(c, user.Response(), token)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired token",
	})
}
