package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/db"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/migrate"
)

type options struct {
	cmd      string
	dir      string
	embedded bool
	name     string
	version  string
}

func main() {
	_ = godotenv.Load()
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	fs.StringVar(&opts.dir, "dir", migrate.SourceDir, "source migrations directory (create, validate)")
	fs.BoolVar(&opts.embedded, "embedded", false, "validate the migrations compiled into the binary instead of -dir")
	fs.StringVar(&opts.name, "name", "", "migration name (create)")
	fs.StringVar(&opts.version, "version", "", "target version YYYYMMDDHHMMSS (version)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch opts.cmd {
	case "create":
		return create(opts, out)
	case "validate":
		return validate(opts, out)
	case "up", "down", "status", "version":
		return withDatabase(ctx, opts.cmd, func(ctx context.Context, client *db.Client) error {
			pool, err := client.SQL()
			if err != nil {
				return err
			}
			if opts.cmd == "version" {
				if opts.version == "" {
					return errors.New("-version is required for -cmd=version")
				}
				return migrate.MigrateToVersion(ctx, pool, opts.version, out)
			}
			return migrate.Run(ctx, pool, opts.cmd, out)
		})
	default:
		return fmt.Errorf("unknown -cmd %q", opts.cmd)
	}
}

func create(opts options, out io.Writer) error {
	if opts.name == "" {
		return errors.New("-name is required for -cmd=create")
	}
	file, err := migrate.CreateSQLMigration(opts.dir, opts.name, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "created", file)
	return nil
}

func validate(opts options, out io.Writer) error {
	fsys, dir := os.DirFS(opts.dir), "."
	if opts.embedded {
		fsys, dir = migrate.FS(), migrate.DefaultDir
	}
	if err := migrate.ValidateDir(fsys, dir); err != nil {
		return fmt.Errorf("validation failed:\n%w", err)
	}
	fmt.Fprintln(out, "migrations ok")
	return nil
}

// withDatabase loads config and hands fn a Postgres client. goose only
// manages the Postgres kv_entries schema.
func withDatabase(ctx context.Context, cmd string, fn func(context.Context, *db.Client) error) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": cmd})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "migrate.db_unavailable", err)
		return err
	}
	defer func() { err = multierr.Append(err, client.Close()) }()

	if err := fn(ctx, client); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return err
	}
	logg.Info(ctx, "migrate.completed")
	return nil
}
