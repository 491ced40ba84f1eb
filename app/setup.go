package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/task-manager-api/api"
	"github.com/sahilchouksey/task-manager-api/config"
	"github.com/sahilchouksey/task-manager-api/database"
	"github.com/sahilchouksey/task-manager-api/router"
	"github.com/sahilchouksey/task-manager-api/services"
	"github.com/sahilchouksey/task-manager-api/services/cron"
	"github.com/sahilchouksey/task-manager-api/services/snapshot"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	if getEnv.IsProduction() {
		log.SetLevel(log.LevelWarn)
	} else {
		log.SetLevel(log.LevelInfo)
	}

	store, err := database.NewGORMStore(getEnv)
	if err != nil {
		if getEnv.DB_DRIVER == "postgres" {
			log.Error("Check whether Postgres is running and DB_* variables are set")
		}
		return err
	}

	// Defer Closing DB
	defer store.Close()

	// Create tables if absent
	if err := store.Init(); err != nil {
		return err
	}

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return fmt.Errorf("unexpected database handle %T", store.GetDB())
	}

	if getEnv.SEED_ON_START {
		if err := database.RunSeeds(db); err != nil {
			return err
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	if getEnv.CRON_ENABLED {
		cronManager := newCronManager(db, getEnv)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warnf("Failed to start cron jobs: %v", err)
		} else {
			defer cronManager.Stop()
		}
	}

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))

	// Setup Routes
	if err := router.SetupRoutes(server.GetEngine(), store, getEnv); err != nil {
		return err
	}

	// Shut down on SIGINT/SIGTERM so deferred cleanup runs
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		if err := server.Shutdown(); err != nil {
			log.Errorf("Shutdown failed: %v", err)
		}
	}()

	return server.Run()
}

func newCronManager(db *gorm.DB, getEnv *config.EnvironmentVariable) *cron.CronManager {
	taskService := services.NewTaskService(db)

	var snapshotter cron.Snapshotter
	if getEnv.SNAPSHOT_BUCKET != "" {
		snapshotService, err := snapshot.NewService(snapshot.Config{
			Bucket:    getEnv.SNAPSHOT_BUCKET,
			Prefix:    getEnv.SNAPSHOT_PREFIX,
			Endpoint:  getEnv.S3_ENDPOINT,
			Region:    getEnv.S3_REGION,
			AccessKey: getEnv.S3_ACCESS_KEY,
			SecretKey: getEnv.S3_SECRET_KEY,
		}, taskService)
		if err != nil {
			log.Warnf("Task snapshots disabled: %v", err)
		} else {
			snapshotter = snapshotService
		}
	}

	return cron.NewCronManager(db, taskService, snapshotter, cron.Config{
		SnapshotSchedule: getEnv.SNAPSHOT_SCHEDULE,
	})
}
