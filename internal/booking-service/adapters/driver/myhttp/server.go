package myhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"driver-booking/internal/booking-service/adapters/driven/auth"
	"driver-booking/internal/booking-service/adapters/driven/bm"
	"driver-booking/internal/booking-service/adapters/driven/cache"
	"driver-booking/internal/booking-service/adapters/driven/consumer"
	"driver-booking/internal/booking-service/adapters/driven/db"
	"driver-booking/internal/booking-service/adapters/driven/storage"
	"driver-booking/internal/booking-service/adapters/driver/myhttp/handle"
	"driver-booking/internal/booking-service/adapters/driver/myhttp/middleware"
	"driver-booking/internal/booking-service/adapters/driver/myhttp/ws"
	"driver-booking/internal/booking-service/core/services"
	"driver-booking/internal/config"
	"driver-booking/internal/mylogger"

	"github.com/redis/go-redis/v9"
)

const WaitTime = 10

type Server struct {
	cfg    *config.Config
	srv    *http.Server
	mylog  mylogger.Logger
	db     *db.DB
	rdb    *redis.Client
	mb     *bm.RabbitMQ
	ctx    context.Context
	appCtx context.Context
	mu     sync.Mutex
}

func NewServer(ctx, appCtx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	return &Server{
		ctx:    ctx,
		appCtx: appCtx,
		cfg:    cfg,
		mylog:  mylog,
	}
}

// Run connects the collaborators, wires the routes and serves until ctx is
// done or the listener fails.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	database, err := db.New(s.ctx, s.cfg.DB, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = database
	mylog.Info("Successful database connection")

	if err := s.db.Migrate(s.ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	rdb, err := cache.Connect(s.ctx, s.cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.rdb = rdb
	mylog.Info("Successful redis connection")

	mb, err := bm.New(s.appCtx, s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	s.mb = mb
	mylog.Info("Successful message broker connection")

	handler, err := s.Configure()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%v", s.cfg.Srv.BookingServicePort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()

	mylog.WithGroup("details").With("port", s.cfg.Srv.BookingServicePort).Info("server is running")
	return s.startHTTPServer()
}

// Stop shuts the listener down and releases the collaborators.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("Shutting down HTTP server...")

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			s.mylog.Error("Failed to close rabbitmq", err)
		}
	}
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.mylog.Error("Failed to close redis", err)
		}
	}
	if s.db != nil {
		s.db.Close()
		s.mylog.Info("Database closed")
	}

	s.mylog.Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Configure builds repositories, services and handlers and starts the
// status consumer.
func (s *Server) Configure() (http.Handler, error) {
	// Repositories
	authUsers := db.NewAuthUserRepo(s.db)
	riderRepo := db.NewRiderProfileRepo(s.db)
	driverRepo := db.NewDriverProfileRepo(s.db)
	catalogRepo := db.NewCatalogRepo(s.db)
	bookingRepo := db.NewBookingRepo(s.db)
	checkoutStore := cache.NewCheckoutStore(s.rdb)
	tokenStore := cache.NewTokenStore(s.rdb)

	files, err := storage.New(s.cfg.Storage.Root, s.cfg.Srv.PublicURL)
	if err != nil {
		return nil, err
	}

	// services
	authProvider := auth.New(s.mylog, s.cfg.App, s.cfg.OAuth, authUsers, tokenStore, s.mb)
	profileService := services.NewProfileService(s.mylog, authProvider, driverRepo, riderRepo)
	authService := services.NewAuthService(s.mylog, authProvider, profileService)
	catalogService := services.NewCatalogService(s.mylog, catalogRepo)
	checkoutService := services.NewCheckoutService(s.mylog, catalogRepo, checkoutStore, bookingRepo, s.mb,
		s.cfg.App.CheckoutTTL, s.cfg.App.RedirectDelay)
	bookingService := services.NewBookingService(s.mylog, bookingRepo, s.mb)
	registrationService := services.NewRegistrationService(s.mylog, authProvider, driverRepo, files,
		profileService, s.mb, s.cfg.Storage.Bucket)

	statusConsumer := consumer.New(s.mylog, s.mb, bookingService)
	if err := statusConsumer.Run(s.appCtx); err != nil {
		return nil, fmt.Errorf("failed to start status consumer: %w", err)
	}

	return NewRouter(Handlers{
		Auth:         handle.NewAuthHandler(authService, s.mylog),
		Profile:      handle.NewProfileHandler(profileService, s.mylog),
		Catalog:      handle.NewCatalogHandler(catalogService, s.mylog),
		Checkout:     handle.NewCheckoutHandler(checkoutService, s.mylog),
		Booking:      handle.NewBookingHandler(bookingService, s.mylog),
		Registration: handle.NewRegistrationHandler(registrationService, s.mylog),
		Sessions:     ws.NewDispatcher(s.appCtx, s.mylog, authProvider, s.cfg.Srv.AllowedOrigins),
		AuthMW:       middleware.NewAuthMiddleware(authService, s.mylog),
		Health:       s.health(),
		StorageRoot:  files.Root(),
	}, s.mylog, s.cfg.Srv.AllowedOrigins), nil
}

func (s *Server) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"database": "ok", "redis": "ok", "rabbitmq": "ok"}
		code := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.IsAlive(ctx); err != nil {
			status["database"], code = "down", http.StatusServiceUnavailable
		}
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			status["redis"], code = "down", http.StatusServiceUnavailable
		}
		if !s.mb.IsAlive() {
			status["rabbitmq"], code = "down", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
