package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/petrkov/shopping-list/internal/handler"
	"github.com/petrkov/shopping-list/internal/middleware"
	"github.com/petrkov/shopping-list/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check, used by
// load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints under /auth. None of
// them require an existing session: login mints one, logout and checksession
// inspect whatever cookie the client presents. The rate limiter runs keyed
// by client IP here since no verified identity exists yet.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.Use(limiter)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.POST("/checksession", a.CheckSession)
}

// RegisterShopping registers the list endpoints under /shopping. SessionAuth
// runs first so every handler sees a verified user identity in the context,
// and the rate limiter after it so requests are counted per user.
func RegisterShopping(e *echo.Echo, s *handler.ShoppingHandler, sessionSecret string, users *repository.UserRepo, limiter echo.MiddlewareFunc) {
	g := e.Group("/shopping")
	g.Use(middleware.SessionAuth(sessionSecret, users))
	g.Use(limiter)
	g.POST("/getlist", s.GetList)
	g.POST("/additem", s.AddItem)
	g.POST("/updatequantity", s.UpdateQuantity)
	g.POST("/deleteitem", s.DeleteItem)
	g.POST("/deleteall", s.DeleteAll)
	g.POST("/toggleitemcheck", s.ToggleItemCheck)
}
