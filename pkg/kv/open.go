package kv

import (
	"context"
	"fmt"

	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/db"
	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/migrate"
	"github.com/angelmondragon/farmfresh-backend/pkg/redis"
)

// Open connects the backend selected by cfg.Storage.Driver. SQL backends are migrated
// before the store is returned.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case enums.StorageDriverMemory, "":
		return NewMemory(), nil

	case enums.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("connecting redis: %w", err)
		}
		return NewRedis(client), nil

	case enums.StorageDriverSQLite, enums.StorageDriverPostgres:
		var (
			client *db.Client
			err    error
		)
		if cfg.Storage.Driver == enums.StorageDriverSQLite {
			client, err = db.NewSQLite(ctx, cfg.Storage.SQLiteDSN, logg)
		} else {
			client, err = db.New(ctx, cfg.DB, logg)
		}
		if err != nil {
			return nil, fmt.Errorf("connecting database: %w", err)
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, err
		}
		return NewSQL(client.DB(), client.Close), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
