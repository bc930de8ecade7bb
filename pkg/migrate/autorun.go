package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/db"
	"github.com/angelmondragon/farmfresh-backend/pkg/db/models"
	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
)

// MaybeRunDev prepares kv_entries for the SQL storage drivers. SQLite is
// always auto-migrated. Postgres runs the goose migrations only in dev with
// FARMFRESH_AUTO_MIGRATE set.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil {
		return nil
	}
	switch cfg.Storage.Driver {
	case enums.StorageDriverSQLite:
		if err := client.DB().WithContext(ctx).AutoMigrate(&models.KVEntry{}); err != nil {
			return fmt.Errorf("auto-migrating sqlite: %w", err)
		}
		return nil
	case enums.StorageDriverPostgres:
		if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
			return nil
		}
	default:
		return nil
	}

	pool, err := client.SQL()
	if err != nil {
		return fmt.Errorf("sql pool: %w", err)
	}
	var applied strings.Builder
	if err := Run(ctx, pool, "up", &applied); err != nil {
		return err
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"env":     cfg.App.Env,
			"applied": strings.Count(applied.String(), "\n"),
		}), "migrate.dev_autorun_completed")
	}
	return nil
}
