// Package server assembles the application: configuration in, a running
// HTTP server out. Every component is constructed here and injected
// explicitly; nothing reaches for global state.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/vyapar/app/controllers"
	appmw "github.com/shashiranjanraj/vyapar/app/middleware"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/app/routes"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/config"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
	"github.com/shashiranjanraj/vyapar/pkg/cache"
	"github.com/shashiranjanraj/vyapar/pkg/database"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
	"github.com/shashiranjanraj/vyapar/pkg/mail"
	"github.com/shashiranjanraj/vyapar/pkg/metrics"
	"github.com/shashiranjanraj/vyapar/pkg/middleware"
	"github.com/shashiranjanraj/vyapar/pkg/reqid"
	"github.com/shashiranjanraj/vyapar/pkg/router"
	"github.com/shashiranjanraj/vyapar/pkg/storage"
	"github.com/shashiranjanraj/vyapar/pkg/stripe"
	"github.com/shashiranjanraj/vyapar/pkg/workerpool"
)

// shutdownGrace bounds how long in-flight requests may run after SIGTERM.
const shutdownGrace = 15 * time.Second

// App holds the assembled application.
type App struct {
	cfg      *config.Config
	db       *gorm.DB
	rdb      *redis.Client
	handler  http.Handler
	router   *router.Router
	mongoLog *logger.MongoHandler
	pool     *workerpool.Pool
}

// New wires every layer from config. It connects to the database and
// cache eagerly so a misconfigured deployment fails at startup, not on
// the first request.
func New(cfg *config.Config) (*App, error) {
	var extraHandlers []slog.Handler
	var mongoLog *logger.MongoHandler
	if cfg.MongoLogURI != "" {
		h, err := logger.NewMongoHandler(cfg.MongoLogURI, cfg.MongoLogDatabase, cfg.MongoLogCollection)
		if err != nil {
			return nil, fmt.Errorf("server: mongo log sink: %w", err)
		}
		mongoLog = h
		extraHandlers = append(extraHandlers, h)
	}
	logger.Init(cfg.Production(), extraHandlers...)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	rdb, err := cache.Connect(cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, logger.L)
	if err != nil {
		return nil, err
	}
	disk, err := storage.New(cfg)
	if err != nil {
		return nil, err
	}
	stripeClient := stripe.NewClient(cfg.StripeAPIKey, cfg.StripeWebhookSecret, cfg.StripeBaseURL)
	mailer := mail.New(cfg)
	pool := workerpool.New(16)

	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	authService := services.NewAuthService(userRepo, tokens)
	productService := services.NewProductService(productRepo, disk)
	cartService := services.NewCartService(rdb, productRepo)
	orderService := services.NewOrderService(orderRepo, cartService)
	paymentService := services.NewPaymentService(stripeClient, orderRepo, userRepo, mailer, pool)

	guard := appmw.NewGuard(tokens, userRepo)

	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
	)
	if cfg.RateLimitPerMinute > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		r.Use(limiter.Middleware())
	}

	r.HandleFunc("/metrics", metrics.Handler())

	routes.RegisterAPI(r, guard, routes.Controllers{
		Auth:    controllers.NewAuthController(authService, cfg.MaxBodyBytes),
		Product: controllers.NewProductController(productService, cfg.MaxBodyBytes),
		Cart:    controllers.NewCartController(cartService, cfg.MaxBodyBytes),
		Order:   controllers.NewOrderController(orderService),
		Payment: controllers.NewPaymentController(paymentService, cfg.MaxBodyBytes),
	})

	return &App{
		cfg:      cfg,
		db:       db,
		rdb:      rdb,
		handler:  r.Handler(),
		router:   r,
		mongoLog: mongoLog,
		pool:     pool,
	}, nil
}

// DB exposes the database handle for CLI commands (migrate, seed).
func (a *App) DB() *gorm.DB { return a.db }

// Routes lists every named route for `vyapar route:list`.
func (a *App) Routes() []router.RouteInfo { return a.router.Routes() }

// Run serves HTTP until the process receives SIGINT/SIGTERM, then drains
// in-flight requests.
func (a *App) Run() error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.AppPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", a.cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}

	a.Close()
	return nil
}

// Close releases held connections and drains background workers.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Shutdown()
	}
	if a.rdb != nil {
		a.rdb.Close() //nolint:errcheck
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close() //nolint:errcheck
	}
	if a.mongoLog != nil {
		a.mongoLog.Close() //nolint:errcheck
	}
}
