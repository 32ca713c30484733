package main

import (
	"context"
	"net/http"
	"os"

	"github.com/foodgo/foodgo-backend/api/routes"
	"github.com/foodgo/foodgo-backend/internal/auth"
	"github.com/foodgo/foodgo-backend/internal/cart"
	"github.com/foodgo/foodgo-backend/internal/catalog"
	"github.com/foodgo/foodgo-backend/internal/checkout"
	"github.com/foodgo/foodgo-backend/internal/location"
	"github.com/foodgo/foodgo-backend/internal/orders"
	"github.com/foodgo/foodgo-backend/internal/otp"
	"github.com/foodgo/foodgo-backend/internal/users"
	"github.com/foodgo/foodgo-backend/pkg/auth/session"
	"github.com/foodgo/foodgo-backend/pkg/config"
	"github.com/foodgo/foodgo-backend/pkg/db"
	"github.com/foodgo/foodgo-backend/pkg/logger"
	"github.com/foodgo/foodgo-backend/pkg/mail"
	"github.com/foodgo/foodgo-backend/pkg/metrics"
	"github.com/foodgo/foodgo-backend/pkg/migrate"
	"github.com/foodgo/foodgo-backend/pkg/redis"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.NewClient(cfg.DB)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	mailSender, err := mail.NewSenderFromConfig(cfg.Mail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail sender", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB)
	catalogRepo := catalog.NewRepository(dbClient.DB)
	cartRepo := cart.NewRepository(dbClient.DB)
	orderRepo := orders.NewRepository(dbClient.DB)

	otpService, err := otp.NewService(otp.ServiceParams{
		Repo:   otp.NewRepository(dbClient.DB),
		Sender: mailSender,
		Config: cfg.OTP,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create otp service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		OTPService:     otpService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	locationService, err := location.NewService(location.ServiceParams{
		DB:       dbClient,
		UserRepo: userRepo,
		Repo:     location.NewRepository(dbClient.DB),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create location service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		DB:         dbClient,
		Repo:       catalogRepo,
		FeedConfig: cfg.Feed,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		DB:          dbClient,
		UserRepo:    userRepo,
		Repo:        cartRepo,
		CatalogRepo: catalogRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		DB:        dbClient,
		UserRepo:  userRepo,
		CartRepo:  cartRepo,
		OrderRepo: orderRepo,
		Config:    cfg.Checkout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		DB:       dbClient,
		UserRepo: userRepo,
		Repo:     orderRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, httpMetrics, routes.Services{
			Auth:     authService,
			Location: locationService,
			Catalog:  catalogService,
			Cart:     cartService,
			Checkout: checkoutService,
			Orders:   orderService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
