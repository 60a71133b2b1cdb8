package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claims-tracker/core/cache"
	"claims-tracker/core/config"
	"claims-tracker/core/database"
	"claims-tracker/core/loader"
	"claims-tracker/core/logger"
	"claims-tracker/core/middleware/auth"
	"claims-tracker/core/middleware/rayid"

	"claims-tracker/feature/claims"
	"claims-tracker/feature/claims/models"
	"claims-tracker/feature/ingest"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "claims-tracker/docs/swagger"
)

// @title Claims Tracker API
// @version 1.0
// @description API for tracking denied and underpaid insurance claims.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the claims tracker server",
	Long:  `Starts the HTTP server, runs migrations, and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(
			&models.ClaimList{},
			&models.ClaimDetail{},
			&models.ClaimFlag{},
			&models.ClaimNote{},
		); err != nil {
			logg.Fatal("Failed to run migrations", zap.Error(err))
		}
		for _, check := range []struct {
			table    string
			expected []string
		}{
			{"claim_list", []string{"id", "patient_name", "billed_amount", "paid_amount", "status", "insurer_name", "discharge_date"}},
			{"claim_detail", []string{"id", "claim_id", "denial_reason", "cpt_codes"}},
		} {
			missing, err := database.MissingColumns(db, check.table, check.expected)
			if err != nil {
				logg.Warn("Failed to inspect table", zap.String("table", check.table), zap.Error(err))
			} else if len(missing) > 0 {
				logg.Warn("Table is missing expected columns",
					zap.String("table", check.table),
					zap.Strings("columns", missing))
			}
		}

		// 4. Initialize Snapshot Cache
		store, err := cache.New(cfg.Cache)
		if err != nil {
			logg.Fatal("Failed to create cache store", zap.Error(err))
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()

		ingestFeature := ingest.NewFeature(db, store, logg, cfg.Ingest)
		mgr.Register(ingestFeature)
		mgr.Register(claims.NewFeature(db, logg, cfg.Server.AdminList()))

		// Middleware Registration
		// RayID must be first to trace everything.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// Background Monitor
		monitorCtx, stopMonitor := context.WithCancel(context.Background())
		defer stopMonitor()
		if interval := cfg.Ingest.MonitorIntervalSeconds; interval > 0 {
			go runMonitorLoop(monitorCtx, ingestFeature.Service(), time.Duration(interval)*time.Second, logg)
		}

		// Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		stopMonitor()
		_ = app.Shutdown()
	},
}

// runMonitorLoop periodically checks the source files and reloads on drift.
func runMonitorLoop(ctx context.Context, svc *ingest.Service, interval time.Duration, logg *zap.Logger) {
	logg.Info("Background monitor started", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logg.Info("Background monitor stopped")
			return
		case <-ticker.C:
			result, err := svc.CheckAndReload(ctx)
			if err != nil {
				logg.Error("Background reload failed", zap.Error(err))
				continue
			}
			if !result.Skipped {
				logg.Info("Background reload completed",
					zap.Strings("changed_files", result.ChangedFiles),
					zap.Int64("claims_loaded", result.ClaimsLoaded),
					zap.Int64("details_loaded", result.DetailsLoaded))
			}
		}
	}
}

func init() {
	RootCmd.AddCommand(startCmd)
}
