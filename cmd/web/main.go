// cmd/web/main.go
//
// HTTP entry point.
//
// Startup order
// -------------
//
//  1. Install a console bootstrap logger so early failures are visible.
//
//  2. Load configuration (base → override → env).  When VAULT_ADDR is set,
//     `vault:` values are resolved through Vault.
//
//  3. Replace the bootstrap logger with the configured one and log the
//     version plus the masked connection URL.
//
//  4. Open the database pool and bind the listener.
//
//  5. Serve until SIGINT or SIGTERM, then drain within
//     app.shutdown_timeout.
//
// Any failure before serving is logged and exits with status 1.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/yanizio/adept-api/internal/config"
	"github.com/yanizio/adept-api/internal/database"
	"github.com/yanizio/adept-api/internal/logger"
	"github.com/yanizio/adept-api/internal/server"
	"github.com/yanizio/adept-api/internal/vault"
)

func main() {
	app := kingpin.New("adept-api", "JSON API server")
	root := app.Flag("root", "Directory holding conf/ (defaults to APP_ROOT or a search upward from the working directory)").String()
	env := app.Flag("env", "Override file name under conf/ (defaults to APP_ENV or development)").String()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger.Bootstrap()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, config.Options{Root: *root, Env: *env})
	_ = zap.L().Sync()
	if err != nil {
		zap.L().Error("startup failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts config.Options) error {
	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	if os.Getenv("VAULT_ADDR") != "" {
		cli, err := vault.New(zap.S().Infof)
		if err != nil {
			return err
		}
		opts.Secrets = cli
	}
	cfg, err := config.Load(ctx, opts)
	if err != nil {
		return err
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	if _, err := logger.New(cfg.Logging); err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	zap.L().Info("starting",
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.Paths.Env),
		zap.String("database", cfg.Database.MaskedConnectionURL()))

	//
	// ── 3.  Database ────────────────────────────────────────────────────
	//
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	//
	// ── 4.  HTTP ────────────────────────────────────────────────────────
	//
	addr := net.JoinHostPort(cfg.App.Host, strconv.Itoa(cfg.App.Port))
	ln, err := server.Listen(addr)
	if err != nil {
		return err
	}
	srv := server.New(addr, newRouter(database.NewStore(db)))
	return server.Run(ctx, srv, ln, cfg.App.ShutdownTimeout)
}
