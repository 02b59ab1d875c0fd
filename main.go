package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fanfi-engagement-service/handlers"
	"fanfi-engagement-service/models"
	"fanfi-engagement-service/services"
	"fanfi-engagement-service/utils"
	"fanfi-engagement-service/workers"

	"github.com/bsm/redislock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 16 * 1024 * 1024, // asset uploads only, nothing bigger
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	originsList := strings.Split(allowedOrigins, ",")
	for i, origin := range originsList {
		originsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(originsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Quest{},
		&models.UserQuest{},
		&models.UserReward{},
		&models.WatchSession{},
		&models.Duel{},
		&models.Match{},
		&models.PredictionMarket{},
		&models.ChainBalance{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	// Redis is optional: without it cooldowns fall back to ledger queries and
	// the duel/claim advisory locks are skipped (the row-level conditional
	// updates stay correct either way).
	var rdb *redis.Client
	var locker *redislock.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		locker = redislock.New(rdb)
		log.Printf("✅ Redis connected at %s", addr)
	} else {
		log.Println("⚠️  REDIS_ADDR not set, running without cooldown cache and advisory locks")
	}

	mintClient := services.NewMintClient()
	if !mintClient.Configured() {
		log.Println("⚠️  MINTER_SERVICE_URL not set, on-chain mints disabled, rewards are database-only")
	}
	verifierClient := services.NewVerifierClient()

	rewardService := services.NewRewardService(db, rdb)
	questService := services.NewQuestService(db, rewardService, mintClient, locker)
	watchService := services.NewWatchService(db, rewardService, questService)
	duelService := services.NewDuelService(db, locker)
	stakingService := services.NewStakingService(questService)
	matchService := services.NewMatchService(db)
	userService := services.NewUserService(db, rdb, verifierClient)
	predictionService := services.NewPredictionService(db, mintClient)

	reconciler := workers.NewBalanceReconciler(db, mintClient)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go reconciler.Run(ctx, 5*time.Minute)

	services.StartEngagementJobs(watchService, duelService)

	handlers.SetupDuelRoutes(app, duelService)
	handlers.SetupQuestRoutes(app, questService)
	handlers.SetupWatchRoutes(app, watchService)
	handlers.SetupMarketRoutes(app, matchService, userService, predictionService)
	handlers.SetupRewardRoutes(app, rewardService, stakingService, userService)
	handlers.SetupAdminRoutes(app, questService, matchService, reconciler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Balance reconciliation worker running (every 5m)")
	log.Println("✅ Engagement housekeeping jobs running (every 10m)")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
