// internal/database/database.go
//
// sqlx connection helpers.
//
// Context
// -------
// The pool is built straight from config.Database.  `postgres` uses the
// pgx stdlib driver, `mysql` uses go-sql-driver/mysql, and both receive the
// DSN from Database.ConnectionURL so there is one place that formats
// credentials.
//
// Public entry points:
//
//	Open(ctx, cfg)     – pool sized from cfg, pinged before returning.
//	NewStore(db)       – thin query layer used by the HTTP handlers.
//
// Notes
// -----
//   • Open pings before returning so cmd/web can fail fast during bootstrap.
//   • Store methods return *apperr.DatabaseError, never raw driver errors.
//     Handlers pass them to respond.Error, which classifies them.
//   • Oxford commas, two spaces after periods.

// Package database opens the sqlx pool and holds the query layer.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/adept-api/internal/apperr"
	"github.com/yanizio/adept-api/internal/config"
)

const (
	maxIdle     = 5
	maxLifetime = 30 * time.Minute
)

// driverName maps the configured driver to its database/sql name.
func driverName(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return "pgx", nil
	case config.DriverMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open returns a pinged *sqlx.DB for cfg.  MaxConnections caps open
// connections, idle connections are capped at min(MaxConnections, 5), and
// every connection is recycled after 30 minutes.
func Open(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	name, err := driverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(name, cfg.ConnectionURL())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	configurePool(db, cfg.MaxConnections)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.MaskedConnectionURL(), err)
	}

	zap.L().Info("database online",
		zap.String("driver", cfg.Driver),
		zap.String("url", cfg.MaskedConnectionURL()),
		zap.Int("max_connections", cfg.MaxConnections))
	return db, nil
}

func configurePool(db *sqlx.DB, maxOpen int) {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(min(maxOpen, maxIdle))
	db.SetConnMaxLifetime(maxLifetime)
}

// Store is the query layer over a pool.  Zero value is invalid.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// ServerVersion reports the version string of the connected server.  Both
// PostgreSQL and MySQL answer `SELECT version()`.
func (s *Store) ServerVersion(ctx context.Context) (string, error) {
	var v string
	if err := s.db.GetContext(ctx, &v, `SELECT version()`); err != nil {
		return "", apperr.NewDatabaseError(err)
	}
	return v, nil
}

// Ping checks the pool is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return apperr.NewDatabaseError(s.db.PingContext(ctx))
}
