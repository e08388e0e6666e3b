package handlers

import (
	"log"
	"net/http"
	"time"

	"famledger/internal/common"
	"famledger/internal/models"
	"famledger/internal/repositories"
	"famledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserHandlers struct {
	users repositories.UserRepository
}

func NewUserHandlers(users repositories.UserRepository) *UserHandlers {
	return &UserHandlers{users: users}
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// Register creates a new end-user account with a fresh salt
func (h *UserHandlers) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}
	if req.Nickname == "" {
		req.Nickname = req.Username
	}

	count, err := h.users.CountByUsername(ctx, req.Username)
	if err != nil {
		log.Printf("username check failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "Username already taken")
	}

	salt := services.NewSalt()
	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: services.HashPassword(req.Password, salt),
		Salt:         salt,
		Nickname:     req.Nickname,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.users.Create(ctx, user); err != nil {
		log.Printf("failed to create user %q: %v", req.Username, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	return c.JSON(http.StatusCreated, user)
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	Nickname string `json:"nickname"`
}

// UpdateProfile updates the caller's own profile
func (h *UserHandlers) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Nickname == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Nickname is required")
	}

	if err := h.users.UpdateProfile(ctx, userID, req.Nickname); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "user")
	}
	return c.JSON(http.StatusOK, user)
}
