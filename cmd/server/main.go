package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fretnav/api/internal/config"
	"github.com/fretnav/api/internal/handler"
	"github.com/fretnav/api/internal/middleware"
	"github.com/fretnav/api/internal/service"
	ws "github.com/fretnav/api/internal/websocket"
	"github.com/fretnav/api/internal/worker"
	"github.com/fretnav/api/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	validate := validator.New()

	hub := ws.NewHub()
	go hub.Run()

	// Initialize services
	fretboardService := service.NewFretboardService(redisClient, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
	shareService := service.NewShareService(cfg.Share.Secret, time.Duration(cfg.Share.TTLHours)*time.Hour)
	cheatsheetService := service.NewCheatsheetService(redisClient, asynqClient)

	// Initialize handlers
	theoryHandler := handler.NewTheoryHandler(validate)
	fretboardHandler := handler.NewFretboardHandler(fretboardService, shareService, validate)
	cheatsheetHandler := handler.NewCheatsheetHandler(cheatsheetService, validate)

	// Initialize middleware
	shareMiddleware := middleware.NewShareMiddleware(shareService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024,
		// Tonics such as F# arrive percent-encoded in the path.
		UnescapePath: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"redis": redisClient.Ping(c.Context()).Err() == nil,
			},
		})
	})

	api := app.Group("/api")

	// Theory routes
	api.Get("/notes", theoryHandler.Notes)
	api.Get("/notes/at-fret", theoryHandler.AtFret)
	api.Get("/notes/in-pattern", theoryHandler.InPattern)
	api.Get("/notes/degree", theoryHandler.Degree)

	api.Get("/patterns", theoryHandler.Patterns)
	api.Get("/patterns/:id", theoryHandler.Pattern)
	api.Get("/tunings", theoryHandler.Tunings)
	api.Get("/tunings/:instrument/:strings/:id", theoryHandler.Tuning)
	api.Get("/keys", theoryHandler.Keys)
	api.Get("/keys/:tonic", theoryHandler.Key)

	// Fretboard routes
	fretboardLimit := rateLimiter.FretboardLimit(cfg.RateLimit.FretboardPerMin)
	api.Post("/fretboard", fretboardLimit, fretboardHandler.Build)
	api.Post("/share", fretboardLimit, fretboardHandler.Share)
	api.Get("/share/:token", fretboardLimit, shareMiddleware.Resolve(), fretboardHandler.Shared)

	// Cheatsheet routes
	cheatsheet := api.Group("/cheatsheet")
	cheatsheet.Post("/start", rateLimiter.CheatsheetLimit(cfg.RateLimit.CheatsheetPerHour), cheatsheetHandler.Start)
	cheatsheet.Get("/status/:jobId", cheatsheetHandler.Status)
	cheatsheet.Get("/result/:jobId", cheatsheetHandler.Result)
	cheatsheet.Post("/cancel/:jobId", cheatsheetHandler.Cancel)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("jobId"))
	}))

	go startWorkerServer(cfg, redisOpt, cheatsheetService, fretboardService, hub)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s (%s)", addr, cfg.Server.Env)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, redisOpt asynq.RedisClientOpt, cheatsheetService *service.CheatsheetService, fretboardService *service.FretboardService, hub *ws.Hub) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Queues: map[string]int{
			service.QueueCheatsheet: 1,
		},
	})

	cheatsheetWorker := worker.NewCheatsheetWorker(cheatsheetService, fretboardService, hub)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeCheatsheet, cheatsheetWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	errCode := response.CodeServiceError
	if code == fiber.StatusNotFound {
		errCode = response.CodeNotFound
	}

	return response.Error(c, code, errCode, message, nil)
}
