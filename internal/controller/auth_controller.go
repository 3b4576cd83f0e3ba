package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"fidesia-be/internal/dto"
	"fidesia-be/internal/pkg/serverutils"
	"fidesia-be/internal/service"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, auth *serverutils.JwtMiddleware)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	ForgotPassword(ctx *fiber.Ctx) error
	ResetPassword(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router, auth *serverutils.JwtMiddleware) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/forgot-password", c.ForgotPassword)
	h.Post("/reset-password", c.ResetPassword)
	h.Post("/logout", auth.Require, c.Logout)
	h.Get("/me", auth.Require, c.Me)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.Context(), &req, ctx.IP())
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return serverutils.ErrorResponse(ctx, fiber.StatusConflict, err.Error())
		}
		return err
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusCreated, "Compte créé", res)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.Context(), &req, ctx.IP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return serverutils.ErrorResponse(ctx, fiber.StatusUnauthorized, err.Error())
		}
		return err
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Connexion réussie", res)
}

// Logout revokes the presented token. It always answers success: a
// token that cannot be revoked is already unusable or about to expire.
func (c *authController) Logout(ctx *fiber.Ctx) error {
	jti, _ := ctx.Locals("token_jti").(string)

	// Recover the expiry from the already-verified token to bound the
	// blacklist entry.
	expiresAt := time.Now().Add(24 * time.Hour)
	if token := ctx.Get("Authorization"); len(token) > 7 {
		parser := jwt.NewParser()
		if parsed, _, err := parser.ParseUnverified(token[7:], jwt.MapClaims{}); err == nil {
			if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
				expiresAt = exp.Time
			}
		}
	}

	_ = c.service.Logout(ctx.Context(), jti, expiresAt)
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Déconnexion réussie", nil)
}

func (c *authController) ForgotPassword(ctx *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	if err := c.service.ForgotPassword(ctx.Context(), &req); err != nil {
		return err
	}
	// same answer whether or not the address exists
	return serverutils.SuccessResponse(ctx, fiber.StatusOK,
		"Si cette adresse existe, un email de réinitialisation a été envoyé", nil)
}

func (c *authController) ResetPassword(ctx *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	if err := c.service.ResetPassword(ctx.Context(), &req); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			return serverutils.ErrorResponse(ctx, fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Mot de passe réinitialisé", nil)
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	userId, err := requireUserId(ctx)
	if err != nil {
		return err
	}

	user, err := c.service.Me(ctx.Context(), userId)
	if err != nil {
		return serverutils.ErrorResponse(ctx, fiber.StatusNotFound, err.Error())
	}
	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Profil", user)
}
