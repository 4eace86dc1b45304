package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caravanshare/internal/config"
	"caravanshare/internal/handlers"
	"caravanshare/internal/middleware"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/repositories/memory"
	"caravanshare/internal/repositories/mongodb"
	"caravanshare/internal/services"
	"caravanshare/internal/utils"
	"caravanshare/pkg/cache"
	"caravanshare/pkg/database"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/oauth"
	"caravanshare/pkg/payment"
	"caravanshare/pkg/sms"
	"caravanshare/pkg/storage"
	"caravanshare/pkg/websocket"
	"caravanshare/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

type repositories struct {
	users        interfaces.UserRepository
	caravans     interfaces.CaravanRepository
	reservations interfaces.ReservationRepository
	payments     interfaces.PaymentRepository
	reviews      interfaces.ReviewRepository
	settlements  interfaces.SettlementRepository
	messages     interfaces.MessageRepository
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  "stdout",
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Pinger{}

	repos, tx, closeDB := setupRepositories(ctx, cfg, appLogger, checks)
	defer closeDB()

	var locker services.Locker
	var sharedCache services.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, appLogger)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisCache.Close()
		locker, sharedCache = redisCache, redisCache
		checks["redis"] = redisCache
	} else {
		appLogger.Warn("Redis disabled; booking locks and caches are process-local")
		locker, sharedCache = cache.NewLocalLocker(), cache.NewMemoryCache()
	}

	fileStorage, err := storage.New(ctx, storage.Config{
		Provider:        cfg.Storage.Provider,
		LocalPath:       cfg.Storage.Local.BasePath,
		LocalURL:        cfg.Storage.Local.BaseURL,
		Region:          cfg.Storage.AWS.Region,
		Bucket:          storageBucket(cfg.Storage),
		CredentialsFile: cfg.Storage.GCP.CredentialsFile,
		CDNDomain:       storageCDN(cfg.Storage),
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialise file storage")
	}

	var processor payment.Processor = payment.NewMockProcessor(nil)
	if cfg.Payment.DefaultProvider == config.PaymentProviderStripe {
		processor = payment.NewStripeProvider(cfg.Payment.Stripe.SecretKey, cfg.Payment.Stripe.PaymentMethod)
	}

	// Optional integrations stay untyped nil when disabled so the services
	// can tell they are off.
	var google oauth.Provider
	if cfg.OAuth.Google.Enabled() {
		google = oauth.NewGoogleOAuthProvider(cfg.OAuth.Google.ClientID, cfg.OAuth.Google.ClientSecret, cfg.OAuth.Google.RedirectURL, cfg.OAuth.Google.Scopes)
	}
	var smsSender sms.Sender
	if cfg.SMS.Enabled {
		twilio, err := sms.NewTwilioProvider(cfg.SMS.Twilio.AccountSID, cfg.SMS.Twilio.AuthToken, cfg.SMS.Twilio.FromNumber)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to configure Twilio")
		}
		smsSender = twilio
	}

	hub := websocket.NewHub(appLogger)
	go hub.Run(ctx)

	location := utils.LoadLocation(cfg.Booking.Timezone)
	bookingOpts := services.BookingOptions{
		Location:      location,
		LockTTL:       cfg.Booking.LockTTL,
		BookedListTTL: cfg.Booking.BookedDatesCacheTTL,
		Currency:      cfg.Payment.Currency,

		PlatformFeePercent: cfg.Payment.PlatformFeePercent,
	}

	notificationService := services.NewNotificationService(hub, smsSender, repos.users, appLogger)
	availabilityService := services.NewAvailabilityService(repos.reservations, location, nil)
	reservationService := services.NewReservationService(repos.reservations, repos.caravans, availabilityService, locker, sharedCache, notificationService, bookingOpts, appLogger)
	paymentService := services.NewPaymentService(repos.payments, repos.reservations, processor, locker, sharedCache, tx, notificationService, bookingOpts, appLogger)
	trustService := services.NewTrustService(repos.users, repos.reviews, appLogger)
	ratingService := services.NewRatingService(repos.reservations, trustService, appLogger)
	reviewService := services.NewReviewService(repos.reviews, repos.reservations, repos.caravans, tx, trustService, notificationService, appLogger)
	caravanService := services.NewCaravanService(repos.caravans, repos.reservations, repos.users, fileStorage, appLogger)
	userService := services.NewUserService(repos.users, fileStorage, appLogger)
	messageService := services.NewMessageService(repos.messages, repos.users, notificationService, nil, appLogger)
	settlementService := services.NewSettlementService(repos.settlements, repos.payments, repos.users, locker, tx, notificationService, bookingOpts, appLogger)
	authService := services.NewAuthService(repos.users, google, sharedCache, services.AuthOptions{
		JWTSecret:         cfg.Security.JWTSecret,
		TokenTTL:          cfg.Security.JWTAccessTokenTTL,
		PasswordMinLength: cfg.Security.PasswordMinLength,
		BcryptCost:        cfg.Security.BcryptCost,
	}, appLogger)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid trusted proxies")
	}

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	uploadsDir := ""
	if cfg.Storage.Provider == storage.ProviderLocal {
		uploadsDir = cfg.Storage.Local.BasePath
	}

	routes.Setup(router, &routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, cfg.App.ClientURL),
		Caravan:     handlers.NewCaravanHandler(caravanService, reservationService, reviewService),
		Reservation: handlers.NewReservationHandler(reservationService, location),
		Payment:     handlers.NewPaymentHandler(paymentService),
		Rating:      handlers.NewRatingHandler(ratingService),
		Review:      handlers.NewReviewHandler(reviewService),
		User:        handlers.NewUserHandler(userService),
		Message:     handlers.NewMessageHandler(messageService),
		Settlement:  handlers.NewSettlementHandler(settlementService),
		Health:      handlers.NewHealthHandler(checks),
		WebSocket: websocket.NewHandler(hub, websocket.Options{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			PingInterval:    cfg.WebSocket.PingInterval,
			PongTimeout:     cfg.WebSocket.PongTimeout,
			MaxMessageSize:  cfg.WebSocket.MaxMessageSize,
			AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
		}),
	}, routes.Options{
		JWTSecret:     cfg.Security.JWTSecret,
		UserRepo:      repos.users,
		WebSocketPath: cfg.WebSocket.Path,
		UploadsDir:    uploadsDir,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(map[string]interface{}{
			"port":        cfg.App.Port,
			"environment": cfg.App.Environment,
			"database":    cfg.Database.Driver,
			"payment":     processor.Name(),
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
}

// setupRepositories connects the configured store. The memory driver keeps
// everything in process and is meant for local runs.
func setupRepositories(ctx context.Context, cfg *config.Config, appLogger *logger.Logger, checks map[string]handlers.Pinger) (*repositories, services.Transactor, func()) {
	if cfg.Database.Driver == config.DatabaseDriverMemory {
		appLogger.Warn("Using in-memory repositories; data is lost on restart")
		return &repositories{
			users:        memory.NewUserRepository(),
			caravans:     memory.NewCaravanRepository(),
			reservations: memory.NewReservationRepository(),
			payments:     memory.NewPaymentRepository(),
			reviews:      memory.NewReviewRepository(),
			settlements:  memory.NewSettlementRepository(),
			messages:     memory.NewMessageRepository(),
		}, nil, func() {}
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:             cfg.Database.URI,
		Database:        cfg.Database.Database,
		MaxPoolSize:     cfg.Database.MaxPoolSize,
		MinPoolSize:     cfg.Database.MinPoolSize,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
		SocketTimeout:   cfg.Database.SocketTimeout,
		UseTransactions: cfg.Database.UseTransactions,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}

	if err := database.NewMigrator(db.Database, appLogger).Up(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to run migrations")
	}
	checks["mongodb"] = db

	return &repositories{
		users:        mongodb.NewUserRepository(db.Database),
		caravans:     mongodb.NewCaravanRepository(db.Database),
		reservations: mongodb.NewReservationRepository(db.Database),
		payments:     mongodb.NewPaymentRepository(db.Database),
		reviews:      mongodb.NewReviewRepository(db.Database),
		settlements:  mongodb.NewSettlementRepository(db.Database),
		messages:     mongodb.NewMessageRepository(db.Database),
	}, db, func() { _ = db.Close() }
}

func storageBucket(cfg *config.StorageConfig) string {
	if cfg.Provider == storage.ProviderGCS {
		return cfg.GCP.Bucket
	}
	return cfg.AWS.Bucket
}

func storageCDN(cfg *config.StorageConfig) string {
	if cfg.Provider == storage.ProviderGCS {
		return cfg.GCP.CDNDomain
	}
	return cfg.AWS.CDNDomain
}
