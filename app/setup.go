package app

import (
	"fmt"
	"log"
	"os"

	"github.com/learnhub/learnhub-api/api"
	"github.com/learnhub/learnhub-api/config"
	"github.com/learnhub/learnhub-api/database"
	"github.com/learnhub/learnhub-api/router"
	"github.com/learnhub/learnhub-api/services"
	"github.com/learnhub/learnhub-api/services/cron"
	"github.com/learnhub/learnhub-api/utils/cache"
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

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		print("If not running, run the following command:\n")
		print("  make docker-up   (for Docker setup)\n")
		print("  make db-up       (for local PostgreSQL)\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		print("Error running migrations:\n")
		return err
	}

	// Redis cache, used for the scheduler run lock. The server still works
	// without it, the escrow job just loses overlap protection.
	var redisCache *cache.RedisCache
	if redisURL := getEnv.REDIS_URL; redisURL != "" {
		redisCache, err = cache.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Cron run locks disabled.", err)
			redisCache = nil
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			escrowService := services.NewEscrowService(db)
			cronManager = cron.NewCronManager(db, escrowService, redisCache)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if redisCache != nil {
			redisCache.Close()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes; logging, panic recovery and the rest of the middleware
	// stack are attached there via SetupSecurity.
	router.SetupRoutes(app, store)

	// Get the PORT & Start the Server
	return server.Run()

}
