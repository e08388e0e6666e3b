package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"famledger/internal/common"
	"famledger/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers serves login/logout/me for one identity surface. The app
// and the operator console each get their own instance, backed by
// independent identity tables and token namespaces.
type AuthHandlers struct {
	auth *services.AuthService
}

func NewAuthHandlers(auth *services.AuthService) *AuthHandlers {
	return &AuthHandlers{auth: auth}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles credential verification and session issuance
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}

	response, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case errors.Is(err, services.ErrAccountDisabled):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			log.Printf("login failed for %q: %v", req.Username, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
		}
	}

	return c.JSON(http.StatusOK, response)
}

// Logout revokes the presented session token; it succeeds for tokens that
// were never issued or were already revoked.
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}

	if err := h.auth.Logout(ctx, tokenString); err != nil {
		log.Printf("logout failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed")
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Me returns the authenticated identity's profile
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ident, err := h.auth.FindIdentity(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "user")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":  ident.ID,
		"username": ident.Username,
		"nickname": ident.Nickname,
	})
}
