package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fretnav/api/internal/handler"
	"github.com/fretnav/api/internal/middleware"
	"github.com/fretnav/api/internal/service"
)

const testShareSecret = "test-secret-for-e2e"

// testApp holds all components needed for testing
type testApp struct {
	app    *fiber.App
	redis  bool
	shares *service.ShareService
}

// setupApp creates a Fiber app wired like main.go. Redis-backed features are
// disabled when no local Redis answers; requireRedis skips those tests.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	// Redis (localhost, DB 15 to avoid collisions)
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})
	t.Cleanup(func() { redisClient.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	redisUp := redisClient.Ping(ctx).Err() == nil

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: "localhost:6379",
		DB:   15,
	})
	t.Cleanup(func() { asynqClient.Close() })

	cacheClient := redisClient
	if !redisUp {
		cacheClient = nil
	}

	validate := validator.New()

	fretboardService := service.NewFretboardService(cacheClient, time.Minute)
	shareService := service.NewShareService(testShareSecret, time.Hour)
	cheatsheetService := service.NewCheatsheetService(redisClient, asynqClient)

	theoryHandler := handler.NewTheoryHandler(validate)
	fretboardHandler := handler.NewFretboardHandler(fretboardService, shareService, validate)
	cheatsheetHandler := handler.NewCheatsheetHandler(cheatsheetService, validate)

	shareMiddleware := middleware.NewShareMiddleware(shareService)
	rateLimiter := middleware.NewRateLimiter(cacheClient)

	app := fiber.New(fiber.Config{
		UnescapePath: true,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"redis": redisUp,
			},
		})
	})

	api := app.Group("/api")

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

	// Use very high rate limits so tests don't get blocked
	fretboardLimit := rateLimiter.FretboardLimit(10000)
	api.Post("/fretboard", fretboardLimit, fretboardHandler.Build)
	api.Post("/share", fretboardLimit, fretboardHandler.Share)
	api.Get("/share/:token", fretboardLimit, shareMiddleware.Resolve(), fretboardHandler.Shared)

	cheatsheet := api.Group("/cheatsheet")
	cheatsheet.Post("/start", rateLimiter.CheatsheetLimit(10000), cheatsheetHandler.Start)
	cheatsheet.Get("/status/:jobId", cheatsheetHandler.Status)
	cheatsheet.Get("/result/:jobId", cheatsheetHandler.Result)
	cheatsheet.Post("/cancel/:jobId", cheatsheetHandler.Cancel)

	return &testApp{app: app, redis: redisUp, shares: shareService}
}

// requireRedis skips tests that need job storage.
func (ta *testApp) requireRedis(t *testing.T) {
	t.Helper()
	if !ta.redis {
		t.Skip("redis not available on localhost:6379")
	}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// parseJSONArray parses response body into a slice.
func parseJSONArray(t *testing.T, resp *http.Response) []interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result []interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// assertErrorCode checks the error envelope's code.
func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %v", code, errObj["code"])
	}
}
