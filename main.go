package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"game-ledger-system/handlers"
	"game-ledger-system/middleware"
	"game-ledger-system/models"
	"game-ledger-system/services"
	"game-ledger-system/utils"
	"game-ledger-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // artwork uploads
	})

	// Only Gateway requests allowed — no exceptions.
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		origins = append(origins, strings.TrimSpace(o))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Game{},
		&models.Item{},
		&models.Ownership{},
		&models.ConsumableBalance{},
		&models.Tournament{},
		&models.Participant{},
		&models.Event{},
		&models.PlatformState{},
		&models.WalletMirror{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	treasuryID := os.Getenv("PLATFORM_TREASURY_ID")
	if treasuryID == "" {
		log.Fatal("PLATFORM_TREASURY_ID environment variable not set")
	}
	escrowID := os.Getenv("PLATFORM_ESCROW_ID")
	if escrowID == "" {
		log.Fatal("PLATFORM_ESCROW_ID environment variable not set")
	}
	if err := services.EnsurePlatformState(db, treasuryID, escrowID); err != nil {
		log.Fatal("failed to seed platform state:", err)
	}

	walletURL := os.Getenv("WALLET_SERVICE_URL")
	if walletURL == "" {
		log.Fatal("WALLET_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("LEDGER_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("LEDGER_SERVICE_TOKEN environment variable not set")
	}
	wallet := services.NewWalletServiceClient(walletURL, serviceToken)

	ledger := services.NewLedger(db, wallet, services.SystemClock)
	marketplaceService := services.NewMarketplaceService(ledger)
	tournamentService := services.NewTournamentService(ledger)
	platformService := services.NewPlatformService(ledger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	walletSyncClient := workers.NewWalletSyncClient(db)
	go workers.PollWallets(ctx, walletSyncClient, 10*time.Second)

	platformService.StartEscrowAuditScheduler(1 * time.Minute)

	handlers.SetupMarketplaceRoutes(app, marketplaceService)
	handlers.SetupTournamentRoutes(app, tournamentService)
	handlers.SetupAdminRoutes(app, platformService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("Ledger service running on http://localhost:5300")
	log.Println("Wallet mirror polling running (every 10s)")
	log.Println("Escrow audit running (every 1m)")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
