package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/groompost/groompost-api/internal/api/middleware"
	"github.com/groompost/groompost-api/internal/core/ports"
)

// SessionManager starts and ends the cookie-backed session of a request.
type SessionManager interface {
	Begin(c echo.Context, userID int64) error
	End(c echo.Context) error
}

type AuthHandler struct {
	authService ports.AuthService
	sessions    SessionManager
}

func NewAuthHandler(authService ports.AuthService, sessions SessionManager) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

// Register creates a new user account and logs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FullName:  req.FullName,
		SalonName: req.SalonName,
	})
	if err != nil {
		return err
	}
	if err := h.sessions.Begin(c, user.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

// Login authenticates a user and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	if err := h.sessions.Begin(c, user.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// GuestLogin logs in as the shared demo account.
//
// @Summary      Guest login
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/guest-login [post]
func (h *AuthHandler) GuestLogin(c echo.Context) error {
	user, err := h.authService.GuestLogin(c.Request().Context())
	if err != nil {
		return err
	}
	if err := h.sessions.Begin(c, user.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// Logout ends the current session.
//
// @Summary      Logout
// @Tags         auth
// @Success      200
// @Failure      500  {object}  ErrorResponse
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.End(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

// CurrentUser returns the authenticated user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  ErrorResponse
// @Router       /api/user [get]
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial profile update. Passwords cannot be changed
// through this endpoint.
//
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/user/profile [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Password != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "password cannot be changed via profile update")
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), userID, req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
