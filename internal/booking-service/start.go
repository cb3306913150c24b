package bookingservice

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"driver-booking/internal/booking-service/adapters/driven/db"
	"driver-booking/internal/booking-service/adapters/driver/myhttp"
	"driver-booking/internal/config"
	"driver-booking/internal/mylogger"
)

func Execute(ctx context.Context, mylog mylogger.Logger, cfg *config.Config) error {
	newCtx, close := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer close()

	server := myhttp.NewServer(newCtx, ctx, mylog, cfg)

	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- server.Run()
	}()

	select {
	case <-newCtx.Done():
		mylog.Info("Shutdown signal received")
		return server.Stop(context.Background())
	case err := <-runErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			mylog.Error("Server failed unexpectedly", err)
			_ = server.Stop(context.Background())
			return err
		}
		mylog.Info("Server exited normally")
		return server.Stop(context.Background())
	}
}

// Migrate applies pending schema migrations and exits.
func Migrate(ctx context.Context, mylog mylogger.Logger, cfg *config.Config) error {
	database, err := db.New(ctx, cfg.DB, mylog)
	if err != nil {
		return err
	}
	defer database.Close()
	return database.Migrate(ctx)
}

// Seed loads the reference driver catalog.
func Seed(ctx context.Context, mylog mylogger.Logger, cfg *config.Config) error {
	database, err := db.New(ctx, cfg.DB, mylog)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	n, err := db.Seed(ctx, db.NewCatalogRepo(database))
	if err != nil {
		return err
	}
	mylog.Action("seed").Info("catalog seeded", "drivers", n)
	return nil
}
