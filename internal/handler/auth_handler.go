package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"animalsquad/internal/auth"
	"animalsquad/internal/errors"
	"animalsquad/internal/model"
	"animalsquad/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a pet login request.
type LoginRequest struct {
	LoginID  string `json:"loginId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ReissueRequest represents a token reissue request.
type ReissueRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	*auth.TokenInfo
	Pet *model.Pet `json:"pet,omitempty"`
}

// Login godoc
// @Summary Login a pet
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	info, pet, err := h.authService.Login(c.Request().Context(), req.LoginID, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	writeTokenHeaders(c, info)
	return c.JSON(http.StatusOK, AuthResponse{TokenInfo: info, Pet: pet})
}

// Reissue godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ReissueRequest true "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/reissue [post]
func (h *AuthHandler) Reissue(c echo.Context) error {
	var req ReissueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RefreshToken == "" {
		req.RefreshToken = c.Request().Header.Get(HeaderRefresh)
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	info, err := h.authService.Reissue(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return toHTTPError(err)
	}

	writeTokenHeaders(c, info)
	return c.JSON(http.StatusOK, AuthResponse{TokenInfo: info})
}

// Logout godoc
// @Summary Logout a pet
// @Description Revokes the refresh token and blacklists the presented access token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return toHTTPError(errors.ErrInvalidToken)
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}
