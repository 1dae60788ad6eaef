package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/petrkov/shopping-list/internal/repository"
	"github.com/petrkov/shopping-list/internal/utils"
)

// CookieName is the cookie the session token travels in.
const CookieName = "session"

// ExpiredSessionCookie returns a cookie that instructs the client to drop
// its session cookie. Used whenever a presented token turns out invalid so
// the client stops replaying it.
func ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionAuth returns an Echo middleware that resolves the session cookie to
// a verified user identity and stores it in the request context as "user_id"
// and "user_name". Handlers behind it must take identity from the context
// only, never from request bodies.
//
// Verification failures are never fatal: the middleware answers with the
// API's embedded-status convention (transport 200, body status 400), clears
// the cookie, and does not call the next handler. Beyond signature and
// expiry, the user ID must still have a users row; a token for a vanished
// user is treated the same as a forged one.
func SessionAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Request().Cookie(CookieName)
			if err != nil || ck.Value == "" {
				return c.JSON(http.StatusOK, echo.Map{
					"status": 400, "message": "Not authenticated",
				})
			}

			userID, name, err := utils.ParseSessionToken(secret, ck.Value)
			if err != nil {
				c.SetCookie(ExpiredSessionCookie())
				return c.JSON(http.StatusOK, echo.Map{
					"status": 400, "message": "Not authenticated",
				})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			ok, err := users.Exists(ctx, userID)
			if err != nil || !ok {
				c.SetCookie(ExpiredSessionCookie())
				return c.JSON(http.StatusOK, echo.Map{
					"status": 400, "message": "Not authenticated",
				})
			}

			c.Set("user_id", userID)
			c.Set("user_name", name)
			return next(c)
		}
	}
}
