package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/config"
	orderControllers "github.com/junaidrashid-git/storefront/controllers/order"
	"github.com/junaidrashid-git/storefront/kv"
	"github.com/junaidrashid-git/storefront/logging"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/otp"
	"github.com/junaidrashid-git/storefront/routes"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront API server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger, err = logging.New(cfg.LogLevel, cfg.Development)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := initDatabase(cfg.Database)
		if err != nil {
			return err
		}
		return migrate(db)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Info("✅ Starting application...")

	db, err := initDatabase(cfg.Database)
	if err != nil {
		return err
	}
	if err := migrate(db); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	otpService := otp.NewService(store, initSender(),
		otp.WithTTL(cfg.OTPTTL),
		otp.WithLogger(logger.Named("otp")),
	)

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !containsWildcard(cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Deps{
		DB:          db,
		OTP:         otpService,
		JWTSecret:   cfg.JWTSecret,
		AdminAPIKey: cfg.AdminAPIKey,
		Orders:      orderControllers.NewHub(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Server running", zap.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// initDatabase sets up the GORM DB connection
func initDatabase(dbCfg config.Database) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dbCfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ DB connection failed: %w", err)
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return fmt.Errorf("❌ AutoMigrate failed: %w", err)
	}
	logger.Info("✅ Database migrated")
	return nil
}

// initStore keeps pending OTP codes in Redis when REDIS_URL is set. The
// in-memory fallback only works for a single instance.
func initStore(ctx context.Context) (kv.Store, func(), error) {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, keeping OTP codes in memory")
		return kv.NewMemoryStore(), func() {}, nil
	}

	store, err := kv.NewRedisStore(ctx, cfg.RedisURL, "storefront")
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func initSender() otp.Sender {
	if cfg.WhatsApp.APIKey == "" {
		logger.Warn("WHATSAPP_API_KEY not set, OTP codes are logged instead of sent")
		return otp.LogSender{Logger: logger.Named("otp")}
	}
	sender := otp.NewWhatsAppSender(cfg.WhatsApp.APIURL, cfg.WhatsApp.APIKey, cfg.OTPCountryCode)
	sender.PhoneNumberID = cfg.WhatsApp.PhoneNumberID
	return sender
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
