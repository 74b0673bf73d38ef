package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"commerce.GO/api"
	orderApi "commerce.GO/api/order"
	"commerce.GO/config"
	"commerce.GO/cron/jobs"
	"commerce.GO/event"

	// API modules self-register via init().
	_ "commerce.GO/api/alert"
	_ "commerce.GO/api/graphql"
	_ "commerce.GO/api/product"
	_ "commerce.GO/api/stock"
	_ "commerce.GO/custom"
)

func getAuthMiddleware() echo.MiddlewareFunc {
	skipPaths := config.GetAuthSkipperPaths()
	skipper := func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
	authType := os.Getenv("AUTH_TYPE")
	switch authType {
	case "key":
		apiKey := os.Getenv("API_KEY")
		return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == apiKey, nil
			},
			Skipper: skipper,
		})
	default:
		return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
			Validator: func(username, password string, c echo.Context) (bool, error) {
				return username == os.Getenv("API_USER") && password == os.Getenv("API_PASS"), nil
			},
			Skipper: skipper,
		})
	}
}

func main() {
	config.LoadEnv()
	config.LoadAppConfig()

	// Initialize Redis
	config.InitRedis()
	redisStatus := "Redis not configured or not reachable, caching disabled."
	if config.RedisClient != nil {
		err := config.RedisClient.Ping(config.RedisCtx()).Err()
		if err == nil {
			redisStatus = "Redis connection successful."
		} else {
			config.RedisClient = nil // Disable Redis if not reachable
			redisStatus = "Redis configured but not reachable, caching disabled."
		}
	}
	log.Println(redisStatus)

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	// Check DB connection
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Println("Database connection successful.")

	jobs.SetDB(db)

	// Domain event plumbing: orders publish post-commit, the dispatcher
	// forwards to notifiers.
	bus := event.NewBus(256)
	defer bus.Close()
	event.NewDispatcher(event.LogNotifier{}).Attach(bus)
	if config.RedisClient != nil {
		// Mirror events onto Redis for out-of-process consumers
		// (events:listen and friends).
		event.NewDispatcher(event.NewRedisRelay(config.RedisClient, event.DefaultChannel)).Attach(bus)
	}
	orderApi.SetBus(bus)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, echo.Map{"status": "ok"})
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(getAuthMiddleware())

	api.ApplyModules(apiGroup, db)
	api.ApplyRoutes(e, db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
