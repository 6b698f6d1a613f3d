package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/taskboard/api/http/presenter"
	"github.com/artem13815/taskboard/api/http/schema"
	"github.com/artem13815/taskboard/pkg/apperr"
	"github.com/artem13815/taskboard/pkg/auth"
	"github.com/artem13815/taskboard/pkg/security/jwt"
)

// TokenRevoker invalidates an issued token.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string) error
}

type AuthHandler struct {
	useCase auth.AuthUseCase
	tokens  TokenRevoker
	schemas *schema.Validator
	logger  *log.Logger
}

func NewAuthHandler(useCase auth.AuthUseCase, tokens TokenRevoker, schemas *schema.Validator, logger *log.Logger) *AuthHandler {
	return &AuthHandler{useCase: useCase, tokens: tokens, schemas: schemas, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

type profileResponse struct {
	Username string    `json:"username"`
	ID       string    `json:"id"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Register handles user registration.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body credentialsRequest true "registration payload"
// @Success 200 {object} presenter.SuccessResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := h.schemas.Decode(schema.Credentials, c.Body(), &req); err != nil {
		return fail(c, h.logger, "register", err)
	}

	id, err := h.useCase.Register(c.Context(), req.Username, req.Password)
	if err != nil {
		return fail(c, h.logger, "register", err)
	}
	h.logger.Info("user registered", "user_id", id)
	return presenter.Success(c, "User registered successfully!")
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body credentialsRequest true "login payload"
// @Success 200 {object} loginResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := h.schemas.Decode(schema.Credentials, c.Body(), &req); err != nil {
		return fail(c, h.logger, "login", err)
	}

	result, err := h.useCase.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		// An unknown username is a bad request here, not a missing resource.
		if errors.Is(err, apperr.ErrNotFound) {
			return presenter.Error(c, http.StatusBadRequest, apperr.Message(err))
		}
		return fail(c, h.logger, "login", err)
	}

	return presenter.JSON(c, http.StatusOK, loginResponse{
		Success:  true,
		Token:    result.Token,
		Username: result.Identity.Username,
	})
}

// Logout revokes the presented token.
// @Summary  Logout
// @Tags     auth
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} presenter.SuccessResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.tokens.Revoke(c.Context(), jwt.TokenFrom(c)); err != nil {
		return fail(c, h.logger, "logout", err)
	}
	return presenter.Success(c, "")
}

// Profile returns the caller's public profile.
// @Summary  Current user profile
// @Tags     auth
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} profileResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /profile [get]
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	identity, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "access denied")
	}
	user, err := h.useCase.Profile(c.Context(), identity.ID)
	if err != nil {
		return fail(c, h.logger, "load profile", err)
	}
	return presenter.JSON(c, http.StatusOK, profileResponse{
		Username: user.Username,
		ID:       user.ID,
		JoinedAt: user.JoinedAt,
	})
}
