package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/petrkov/shopping-list/internal/config"
	"github.com/petrkov/shopping-list/internal/middleware"
	"github.com/petrkov/shopping-list/internal/repository"
	"github.com/petrkov/shopping-list/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints. Every endpoint
// answers with transport status 200 and an application-level status code
// embedded in the body; the frontend only ever looks at the embedded one.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

type loginReq struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Login records the externally-authenticated identity and hands out a
// session cookie. The user row is created on first login only; the stored
// name is not refreshed on later logins.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	_ = c.Bind(&req)
	req.UserID = strings.TrimSpace(req.UserID)
	req.Name = strings.TrimSpace(req.Name)
	if req.UserID == "" {
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": "Google ID not provided"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": "Name not provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Users.CreateIfAbsent(ctx, req.UserID, req.Name); err != nil {
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": "Failed to log in"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.SessionSecret, req.UserID, req.Name, h.Cfg.SessionTTLDays)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"status": 400, "message": "Failed to log in"})
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    tok.Token,
		Path:     "/",
		MaxAge:   h.Cfg.SessionTTLDays * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"status": 200, "message": ""})
}

// Logout clears the session cookie. The token itself stays cryptographically
// valid until expiry; invalidation is client-side only.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(middleware.ExpiredSessionCookie())
	return c.JSON(http.StatusOK, echo.Map{"status": 200, "message": "Logged out successfully"})
}

// CheckSession reports whether the presented cookie is a live session. A
// token that verifies but points at a user with no users row is treated as
// invalid and the cookie is cleared, so stale clients stop replaying it.
func (h *AuthHandler) CheckSession(c echo.Context) error {
	ck, err := c.Request().Cookie(middleware.CookieName)
	if err != nil || ck.Value == "" {
		return c.JSON(http.StatusOK, echo.Map{
			"status":        200,
			"authenticated": false,
			"message":       "Session cookie not found",
		})
	}

	userID, name, err := utils.ParseSessionToken(h.Cfg.SessionSecret, ck.Value)
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if _, dbErr := h.Users.GetByID(ctx, userID); dbErr != nil {
			if dbErr == sql.ErrNoRows {
				err = utils.ErrInvalidSession
			} else {
				err = dbErr
			}
		}
	}
	if err != nil {
		c.SetCookie(middleware.ExpiredSessionCookie())
		return c.JSON(http.StatusOK, echo.Map{
			"status":        400,
			"authenticated": false,
			"message":       "Error when authenticating",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":        200,
		"authenticated": true,
		"userId":        userID,
		"name":          name,
		"message":       "",
	})
}
