package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/task-manager-api/config"
	"github.com/sahilchouksey/task-manager-api/database"
	"github.com/sahilchouksey/task-manager-api/handlers"
	task_handlers "github.com/sahilchouksey/task-manager-api/handlers/task"
	"github.com/sahilchouksey/task-manager-api/services"
	"github.com/sahilchouksey/task-manager-api/utils"
	"github.com/sahilchouksey/task-manager-api/utils/cache"
	"github.com/sahilchouksey/task-manager-api/utils/middleware"
	"gorm.io/gorm"
)

// limiterPrefix namespaces rate-limit counters in Redis
const limiterPrefix = "task-api:limiter:"

// SetupRoutes attaches middleware and every route to app
func SetupRoutes(app *fiber.App, store database.Storage, getEnv *config.EnvironmentVariable) error {
	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return errors.New("failed to get GORM DB instance")
	}

	// Redis is optional; without it the limiter keeps counters in memory
	var limiterStorage fiber.Storage
	if getEnv.REDIS_URL != "" {
		redisCache, err := cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Warnf("Failed to connect to Redis: %v. Rate limit counters stay in memory.", err)
		} else {
			limiterStorage = cache.NewStorage(redisCache, limiterPrefix)
		}
	}

	// Apply security middleware
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    getEnv.ALLOWED_ORIGINS,
		RateLimitRequests: getEnv.RATE_LIMIT_REQUESTS,
		RateLimitWindow:   getEnv.RATE_LIMIT_WINDOW,
		Storage:           limiterStorage,
		DisableLogger:     getEnv.GO_ENV == "test",
	})

	taskService := services.NewTaskService(db)
	taskHandler := task_handlers.NewTaskHandler(taskService)

	// Health check endpoint
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	api := app.Group("/api")

	// Collection resource
	tasks := api.Group("/tasks")
	tasks.Get("/", taskHandler.ListTasks)
	tasks.Post("/", taskHandler.CreateTask)

	// Item resource, non-integer ids do not match and fall through to 404
	tasks.Get("/:id<int>", taskHandler.GetTask)
	tasks.Put("/:id<int>", taskHandler.ReplaceTask)
	tasks.Delete("/:id<int>", taskHandler.DeleteTask)

	return nil
}
