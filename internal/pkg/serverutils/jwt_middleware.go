package serverutils

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const LocalsIdentity = "identity"

func bearerToken(ctx *fiber.Ctx) (string, bool) {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return "", false
	}
	return authHeader[7:], true
}

// userIDFromToken validates an HS256 token and returns its user_id claim.
func userIDFromToken(tokenStr string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid claims")
	}
	switch v := claims["user_id"].(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case float64:
		return fmt.Sprintf("%.0f", v), nil
	}
	return "", fmt.Errorf("missing user_id claim")
}

// JwtMiddleware rejects requests without a valid bearer token.
func JwtMiddleware(secret string) fiber.Handler {
	key := []byte(secret)
	return func(ctx *fiber.Ctx) error {
		tokenStr, ok := bearerToken(ctx)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
		}
		userID, err := userIDFromToken(tokenStr, key)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		ctx.Locals(LocalsIdentity, "user:"+userID)
		return ctx.Next()
	}
}

// IdentityMiddleware names the caller for session partitioning: the user_id
// of a valid bearer token, otherwise the client address. It never rejects.
func IdentityMiddleware(secret string) fiber.Handler {
	key := []byte(secret)
	return func(ctx *fiber.Ctx) error {
		identity := "ip:" + ctx.IP()
		if tokenStr, ok := bearerToken(ctx); ok && len(key) > 0 {
			if userID, err := userIDFromToken(tokenStr, key); err == nil {
				identity = "user:" + userID
			}
		}
		ctx.Locals(LocalsIdentity, identity)
		return ctx.Next()
	}
}

// Identity returns what IdentityMiddleware stored.
func Identity(ctx *fiber.Ctx) string {
	if v, ok := ctx.Locals(LocalsIdentity).(string); ok {
		return v
	}
	return "ip:" + ctx.IP()
}
