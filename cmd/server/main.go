package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files during local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/petrkov/shopping-list/internal/config"
	"github.com/petrkov/shopping-list/internal/database"
	"github.com/petrkov/shopping-list/internal/handler"
	"github.com/petrkov/shopping-list/internal/middleware"
	"github.com/petrkov/shopping-list/internal/queue"
	"github.com/petrkov/shopping-list/internal/repository"
	"github.com/petrkov/shopping-list/internal/router"
	queue_publisher "github.com/petrkov/shopping-list/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment variables win

	cfg := config.Load() // Load environment config (fatal on missing vars)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Redis is optional: with no client the limiter becomes a passthrough.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)

	users := repository.NewUserRepo(db)
	lists := repository.NewListRepo(db)

	auth := handler.NewAuthHandler(cfg, users)
	shopping := handler.NewShoppingHandler(lists)
	shopping.Publish = queue_publisher.PublishListActivity

	// Background consumer mirroring list activity into logs/activity.log.
	// It reconnects on its own; the HTTP server does not wait for it.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, limiter)
	router.RegisterShopping(e, shopping, cfg.SessionSecret, users, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
