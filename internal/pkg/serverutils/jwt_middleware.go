package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// TokenBlacklist answers whether a token id has been revoked (logout).
type TokenBlacklist interface {
	IsRevoked(jti string) (bool, error)
}

// JwtMiddleware authenticates requests from the Authorization header and
// sets user_id, user_role and token_jti in the request locals.
type JwtMiddleware struct {
	secret    []byte
	blacklist TokenBlacklist
}

func NewJwtMiddleware(secret string, blacklist TokenBlacklist) *JwtMiddleware {
	return &JwtMiddleware{
		secret:    []byte(secret),
		blacklist: blacklist,
	}
}

func (m *JwtMiddleware) parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func bearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func (m *JwtMiddleware) authenticate(ctx *fiber.Ctx, tokenStr string) error {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	jti, _ := claims["jti"].(string)
	if jti != "" && m.blacklist != nil {
		revoked, err := m.blacklist.IsRevoked(jti)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "session store unavailable")
		}
		if revoked {
			return fiber.NewError(fiber.StatusUnauthorized, "token revoked")
		}
	}

	ctx.Locals("user_id", claims["user_id"])
	ctx.Locals("user_role", claims["role"])
	ctx.Locals("token_jti", jti)
	return nil
}

// Require rejects requests without a valid token.
func (m *JwtMiddleware) Require(ctx *fiber.Ctx) error {
	tokenStr := bearerToken(ctx)
	if tokenStr == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}
	if err := m.authenticate(ctx, tokenStr); err != nil {
		return err
	}
	return ctx.Next()
}

// Optional authenticates when a token is present and lets anonymous
// requests through. The chat endpoint serves both.
func (m *JwtMiddleware) Optional(ctx *fiber.Ctx) error {
	tokenStr := bearerToken(ctx)
	if tokenStr == "" {
		return ctx.Next()
	}
	if err := m.authenticate(ctx, tokenStr); err != nil {
		return err
	}
	return ctx.Next()
}

// AdminOnly must run after Require.
func (m *JwtMiddleware) AdminOnly(ctx *fiber.Ctx) error {
	role, _ := ctx.Locals("user_role").(string)
	if role != "admin" {
		return fiber.NewError(fiber.StatusForbidden, "admin access required")
	}
	return ctx.Next()
}
