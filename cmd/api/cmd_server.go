package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/georgemunganga/printa-apparel/internal/config"
	"github.com/georgemunganga/printa-apparel/internal/modules/auth"
	"github.com/georgemunganga/printa-apparel/internal/modules/catalog"
	"github.com/georgemunganga/printa-apparel/internal/modules/customer"
	"github.com/georgemunganga/printa-apparel/internal/modules/design"
	"github.com/georgemunganga/printa-apparel/internal/modules/order"
	"github.com/georgemunganga/printa-apparel/internal/modules/payment"
	"github.com/georgemunganga/printa-apparel/internal/modules/printarea"
	"github.com/georgemunganga/printa-apparel/internal/modules/upload"
	"github.com/georgemunganga/printa-apparel/internal/platform/cache"
	"github.com/georgemunganga/printa-apparel/internal/platform/database"
	"github.com/georgemunganga/printa-apparel/internal/platform/logger"
	"github.com/georgemunganga/printa-apparel/internal/platform/metrics"
)

const requestTimeout = 30 * time.Second

// printa serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New(cfg.AppEnv, nil)
	logger.SetDefault(log)

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("connected to database")

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		log.Info("connected to redis", "addr", cfg.RedisAddr)
	}

	router, err := newRouter(cfg, db, rdb, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("printa api listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newRouter wires every module onto one chi router.
func newRouter(cfg *config.Config, db *sql.DB, rdb *redis.Client, log *slog.Logger) (http.Handler, error) {
	// ── Identity ────────────────────────────────────────────
	customers := customer.NewService(customer.NewPostgresRepository(db), cfg.AdminAllowlist())
	webhook, err := customer.NewWebhookHandler(customers, cfg.IdentityWebhookSecret,
		cache.NewDeduper(rdb, "printa:"))
	if err != nil {
		return nil, fmt.Errorf("identity webhook: %w", err)
	}
	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)

	// ── Catalog & Designs ───────────────────────────────────
	areas := printarea.Default()
	products := catalog.NewService(catalog.NewPostgresRepository(db))
	designs := design.NewService(design.NewPostgresRepository(db), areas, products, catalog.KnownColor)

	// ── Checkout ────────────────────────────────────────────
	gateway := payment.NewGateway(cfg.StripeSecretKey)
	orders := order.NewService(order.NewPostgresRepository(db), designs, customers, gateway)
	log.Info("payment gateway ready", "provider", gateway.Provider())

	signer := upload.NewSigner(upload.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Signed by the identity provider, not by a bearer token.
		webhook.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(verifier, customers))
			printarea.NewHandler(areas).RegisterRoutes(r)
			catalog.NewHandler(products).RegisterRoutes(r)
			customer.NewHandler(customers).RegisterRoutes(r)
			design.NewHandler(designs).RegisterRoutes(r)
			order.NewHandler(orders, cfg.AppURL).RegisterRoutes(r)
			upload.NewHandler(signer).RegisterRoutes(r)
		})
	})
	return r, nil
}
