package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"driver-booking/internal/config"
	"driver-booking/internal/mylogger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 3 * time.Second

type DB struct {
	cfg   *config.DBconfig
	mylog mylogger.Logger
	pool  *pgxpool.Pool
	mu    *sync.Mutex
}

// New opens a connection pool and verifies it with a ping.
func New(ctx context.Context, dbCfg *config.DBconfig, mylog mylogger.Logger) (*DB, error) {
	d := &DB{
		cfg:   dbCfg,
		mylog: mylog,
		mu:    &sync.Mutex{},
	}

	if err := d.connect(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// NewFromPool wraps an existing pool.
func NewFromPool(pool *pgxpool.Pool, mylog mylogger.Logger) *DB {
	return &DB{pool: pool, mylog: mylog, mu: &sync.Mutex{}}
}

func (d *DB) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool != nil {
		d.pool.Close()
	}
}

// IsAlive pings the pool and rebuilds it once if the ping fails.
func (d *DB) IsAlive(ctx context.Context) error {
	p := d.Pool()
	if p == nil {
		return fmt.Errorf("DB is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		if d.cfg == nil {
			return fmt.Errorf("ping failed: %w", err)
		}
		d.mylog.Action("db_reconnect").Warn("ping failed, reconnecting", "error", err.Error())
		if connectionErr := d.connect(ctx); connectionErr != nil {
			return fmt.Errorf("ping failed: %w", err)
		}
	}

	return nil
}

func (d *DB) Pool() *pgxpool.Pool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pool
}

func (d *DB) connect(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(d.cfg.DSN())
	if err != nil {
		return fmt.Errorf("parse database config: %w", err)
	}
	if d.cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(d.cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	d.mu.Lock()
	old := d.pool
	d.pool = pool
	d.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}
