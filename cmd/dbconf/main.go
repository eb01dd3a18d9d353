// cmd/dbconf/main.go
//
// dbconf – resolve, check, and watch the database connection descriptor.
//
// Boot sequence
// -------------
//
//  1. Console bootstrap logger; switch to the rotating file logger when
//     --log-dir is given.
//
//  2. Resolve the descriptor once (dotenv → YAML → DATABASE_* env) and
//     fail fast on any invariant violation.
//
//  3. Replace a vault:<mount>/<path>#<key> password with the secret.
//
//  4. Without --check or --listen: print the redacted descriptor and exit.
//
//  5. --check opens the pool and pings within the acquire timeout.
//
//  6. --listen additionally serves /metrics and /healthz and samples pool
//     stats until SIGINT or SIGTERM.
//
// Exit code 1 on any error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/dbconf/internal/config"
	"github.com/yanizio/dbconf/internal/database"
	"github.com/yanizio/dbconf/internal/logger"
	"github.com/yanizio/dbconf/internal/metrics"
	"github.com/yanizio/dbconf/internal/server"
	"github.com/yanizio/dbconf/internal/vault"
)

const statsInterval = 15 * time.Second

type flags struct {
	envFile            string
	yamlFile           string
	logDir             string
	listen             string
	check              bool
	requireCredentials bool
}

func parseFlags() flags {
	var f flags
	pflag.StringVar(&f.envFile, "env-file", ".env", "dotenv file layered under the process environment (skipped when missing)")
	pflag.StringVar(&f.yamlFile, "config", "", "YAML file with DATABASE_* keys layered between dotenv and the environment")
	pflag.StringVar(&f.logDir, "log-dir", "", "write rotating JSON logs to this directory")
	pflag.StringVar(&f.listen, "listen", "", "serve /metrics and /healthz on this address (implies --check)")
	pflag.BoolVar(&f.check, "check", false, "open the pool and ping the database")
	pflag.BoolVar(&f.requireCredentials, "require-credentials", false, "reject an empty DATABASE_PASSWORD")
	pflag.Parse()
	return f
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	f := parseFlags()

	log := logger.Bootstrap()
	if f.logDir != "" {
		l, err := logger.New(logger.Options{Dir: f.logDir, Tee: runningInTTY()})
		if err != nil {
			log.Fatalw("start logger", "err", err)
		}
		log = l
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f, log); err != nil {
		log.Errorw("dbconf failed", "err", err)
		_ = log.Sync()
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, log *zap.SugaredLogger) error {
	//
	// ── 1.  Resolve once ────────────────────────────────────────────────
	//
	d, err := config.Load(config.LoadOptions{
		EnvFile:            f.envFile,
		YAMLFile:           f.yamlFile,
		RequireCredentials: f.requireCredentials,
	})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	//
	// ── 2.  Secret references ───────────────────────────────────────────
	//
	if config.HasSecretRef(d) {
		cli, err := vault.New(nil, log.Infof)
		if err != nil {
			return err
		}
		if d, err = config.ResolveSecrets(ctx, d, cli); err != nil {
			return err
		}
		var vopts []config.Option
		if f.requireCredentials {
			vopts = append(vopts, config.RequireCredentials())
		}
		if err := config.Validate(d, vopts...); err != nil {
			return fmt.Errorf("resolved configuration: %w", err)
		}
	}

	if !f.check && f.listen == "" {
		fmt.Println(d.String())
		return nil
	}

	//
	// ── 3.  Pool ────────────────────────────────────────────────────────
	//
	pool, err := database.OpenPool(ctx, d)
	if err != nil {
		return err
	}
	defer pool.Close()

	if f.listen == "" {
		log.Infow("database reachable", "host", d.Connection.Host, "database", d.Connection.Database)
		return nil
	}

	//
	// ── 4.  Ops listener + stats sampler ────────────────────────────────
	//
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("ops listener up", "addr", f.listen)
		return server.Run(gctx, server.New(f.listen, server.NewRouter(pool, d)))
	})
	g.Go(func() error {
		return database.SamplePool(gctx, func() metrics.PoolStat { return pool.Stat() }, statsInterval)
	})
	return g.Wait()
}
