package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/examledger/internal/config"
	"github.com/GlebRadaev/examledger/internal/gateway"
	"github.com/GlebRadaev/examledger/internal/gateway/paypal"
	"github.com/GlebRadaev/examledger/internal/gateway/razorpay"
	"github.com/GlebRadaev/examledger/internal/handlers"
	"github.com/GlebRadaev/examledger/internal/pg"
	"github.com/GlebRadaev/examledger/internal/reconcile"
	"github.com/GlebRadaev/examledger/internal/repo"
	"github.com/GlebRadaev/examledger/internal/service"
	"github.com/GlebRadaev/examledger/internal/service/paymentservice"
	"github.com/GlebRadaev/examledger/pkg/auth"
	"github.com/GlebRadaev/examledger/pkg/clients"
	"github.com/GlebRadaev/examledger/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg  *config.Config
	api  *handlers.Handlers
	srv  *service.Services
	repo *repo.Repositories
	ext  *reconcile.Service

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("can't load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := NewPool(ctx, cfg.Database)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}

	a.cfg = cfg
	gateways := NewGateways(cfg)
	a.repo = repo.New(pg.New(pool), pg.NewTXManager(pool))
	a.srv = service.New(a.repo, gateways, FailurePolicy(cfg))
	a.api = handlers.New(a.srv, auth.NewJWTService(cfg.JWTSecret))
	a.ext = reconcile.New(cfg.Reconcile, a.repo.TransactionRepo, gateways, a.srv.PaymentService)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startReconciler(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully", zap.String("env", cfg.Environment))
	return nil
}

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

// NewGateways builds the adapters of every supported gateway. Unsigned
// webhooks are accepted only outside production.
func NewGateways(cfg *config.Config) gateway.Registry {
	client := clients.NewHTTPClient(cfg.GatewayTimeout)
	allowUnsigned := !cfg.IsProduction()

	return gateway.NewRegistry(
		paypal.New(paypal.Config{
			ClientID:      cfg.PayPal.ClientID,
			ClientSecret:  cfg.PayPal.ClientSecret,
			WebhookID:     cfg.PayPal.WebhookID,
			BaseURL:       cfg.PayPal.BaseURL,
			CertHost:      cfg.PayPal.CertHost,
			AllowUnsigned: allowUnsigned,
		}, client),
		razorpay.New(razorpay.Config{
			KeyID:         cfg.Razorpay.KeyID,
			KeySecret:     cfg.Razorpay.KeySecret,
			WebhookSecret: cfg.Razorpay.WebhookSecret,
			BaseURL:       cfg.Razorpay.BaseURL,
			AllowUnsigned: allowUnsigned,
		}, client),
	)
}

func FailurePolicy(cfg *config.Config) paymentservice.FailurePolicy {
	return paymentservice.FailurePolicy{
		MaxFailures: cfg.FailureMaxAttempts,
		StaleAfter:  cfg.FailureStaleAfter,
	}
}

// NewReconciler wires the services and the sweeper over the pool, for
// one-off runs outside the server.
func NewReconciler(cfg *config.Config, pool *pgxpool.Pool) (*service.Services, *reconcile.Service) {
	gateways := NewGateways(cfg)
	repos := repo.New(pg.New(pool), pg.NewTXManager(pool))
	services := service.New(repos, gateways, FailurePolicy(cfg))
	return services, reconcile.New(cfg.Reconcile, repos.TransactionRepo, gateways, services.PaymentService)
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startReconciler(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.ext.Start(ctx)
		<-ctx.Done()
		a.ext.Close()
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
