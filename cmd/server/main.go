package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
	config "github.com/sahilm27/postpilot/configs"
	"github.com/sahilm27/postpilot/internal/api/handlers"
	"github.com/sahilm27/postpilot/internal/api/middleware"
	"github.com/sahilm27/postpilot/internal/dispatch"
	job "github.com/sahilm27/postpilot/internal/jobs"
	"github.com/sahilm27/postpilot/internal/platform"
	"github.com/sahilm27/postpilot/internal/queue"
	"github.com/sahilm27/postpilot/internal/repository"
	"github.com/sahilm27/postpilot/internal/scheduler"
	"github.com/sahilm27/postpilot/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	postMediaRepo := repository.NewPostMediaRepository(db)
	selectedAccountRepo := repository.NewSelectedAccountRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	settingsRepository := repository.NewSettingsRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	outcomeRepo := repository.NewPlatformOutcomeRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	registry := platform.NewRegistry(
		platform.NewTiktokAdapter(*cfg, socialAccountRepo),
		platform.NewInstagramAdapter(*cfg, socialAccountRepo),
		platform.NewYoutubeAdapter(*cfg, socialAccountRepo),
	)

	coordinator := dispatch.NewCoordinator(postRepo, outcomeRepo, selectedAccountRepo, socialAccountRepo, postMediaRepo, mediaAssetRepo, registry)

	queueClient := queue.NewClient(client)
	executor := scheduler.NewExecutor(scheduleRepo, postRepo, postMediaRepo, selectedAccountRepo, socialAccountRepo, settingsRepository, queueClient)
	scanner := scheduler.NewScanner(scheduleRepo, queueClient)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	r2Service := service.NewR2Service(*cfg)
	postService := service.NewPostService(db, postRepo, selectedAccountRepo, mediaAssetRepo, socialAccountRepo, postMediaRepo, outcomeRepo, coordinator, r2Service)
	scheduleService := service.NewScheduleService(scheduleRepo, settingsRepository)
	platformService := service.NewPlatformService(*cfg, socialAccountRepo)
	connectService := service.NewConnectService(*cfg, socialAccountRepo)
	settingsService := service.NewSettingsService(settingsRepository)
	analyticsService := service.NewAnalyticsService(analyticsRepo, socialAccountRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepository)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	platformHandler := handlers.NewPlatformHandler(platformService, connectService, *cfg)
	app.Get("/auth/:platform", platformHandler.AddSocialAccount)
	app.Get("/auth/:platform/callback", platformHandler.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	settings := handlers.NewSettingsHandler(settingsService)
	api.Get("/settings/info", settings.GetSettings)
	api.Post("/settings/update", settings.UpdateSettings)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	post := handlers.NewPostHandler(postService, queueClient)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/cancel", post.CancelPost)
	api.Post("/posts/redispatch", post.RedispatchPost)
	api.Post("/posts/remove", post.RemovePost)

	schedule := handlers.NewScheduleHandler(scheduleService)
	api.Post("/schedules/create", schedule.CreateSchedule)
	api.Get("/schedules", schedule.ListSchedules)
	api.Get("/schedules/preview", schedule.PreviewSchedule)
	api.Post("/schedules/pause", schedule.PauseSchedule)
	api.Post("/schedules/resume", schedule.ResumeSchedule)
	api.Post("/schedules/queue", schedule.ReplaceQueue)
	api.Post("/schedules/remove", schedule.RemoveSchedule)

	analytics := handlers.NewAnalyticsHandler(analyticsService)
	api.Get("/analytics/accounts", analytics.AccountHistory)

	// social accounts api routes
	api.Get("/accounts", platformHandler.ListSocialAccounts)
	api.Post("/accounts/remove", platformHandler.DeleteSocialAccount)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, registry)
	cleanupJob := job.NewCleanupJob(scheduleRepo, postRepo, queueClient)
	metricsJob := job.NewMetricsJob(socialAccountRepo, analyticsRepo, registry)

	//queue
	queueW := queue.NewQueue(coordinator, executor)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", func() {
		if err := scanner.Scan(context.Background()); err != nil {
			log.Printf("Schedule scan failed: %v", err)
		}
	})
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 00h10m00s", cleanupJob.ReleaseStalePosts)
	c.AddFunc("@every 01h00m00s", cleanupJob.CleanupSchedules)
	c.AddFunc("@every 06h00m00s", metricsJob.CollectMetrics)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeDispatchPost, queueW.HandleDispatchPostTask)
		mux.HandleFunc(queue.TaskTypeRedispatchPost, queueW.HandleRedispatchPostTask)
		mux.HandleFunc(queue.TaskTypeScheduleTick, queueW.HandleScheduleTickTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
