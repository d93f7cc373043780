package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-backend/internal/logging"
	"github.com/iliyamo/auth-backend/internal/middleware"
	"github.com/iliyamo/auth-backend/internal/model"
)

// requestTimeout bounds the store and hashing work of one request.
const requestTimeout = 5 * time.Second

// Authenticator is the part of the auth service the handlers need.
type Authenticator interface {
	Register(ctx context.Context, email, password, fullName string) (model.TokenPair, error)
	Login(ctx context.Context, email, password string) (model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
}

// AuthHandler bundles dependencies for the user endpoints.
type AuthHandler struct {
	auth Authenticator
	log  *slog.Logger
}

func NewAuthHandler(auth Authenticator, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = logging.Discard()
	}
	return &AuthHandler{auth: auth, log: log}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type userDetail struct {
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// bind decodes the JSON body into req and runs its validate tags. It
// returns the message for a 400 response, or "" when req is usable.
func bind(c echo.Context, req any) string {
	if err := c.Bind(req); err != nil {
		return "invalid body"
	}
	if err := c.Validate(req); err != nil {
		return err.Error()
	}
	return ""
}

// Register creates a user and returns a token pair with 201.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if msg := bind(c, &req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	pair, err := h.auth.Register(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, pair)
}

// Login verifies credentials and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if msg := bind(c, &req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	pair, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a refresh token for a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if msg := bind(c, &req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	pair, err := h.auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Me returns the caller resolved by the bearer middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, userDetail{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	})
}
