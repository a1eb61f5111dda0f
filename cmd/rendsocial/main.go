package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"rendsocial/app/repository"
	"rendsocial/internal/pkg/cache"
	"rendsocial/internal/pkg/database"
	"rendsocial/internal/pkg/env"
	"rendsocial/internal/pkg/metrics/counter"
	"rendsocial/internal/pkg/router"
)

const viewCounterFlushInterval = 60 * time.Second

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// flush pending view counters from redis to the database periodically
	go func() {
		ticker := time.NewTicker(viewCounterFlushInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := counter.FlushAll(); err != nil {
				log.Printf("view counter flush failed: %v", err)
			}
		}
	}()

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
