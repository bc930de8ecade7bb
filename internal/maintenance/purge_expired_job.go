package maintenance

import (
	"context"
	"fmt"

	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/metrics"
)

const purgeExpiredJobName = "purge_expired_entries"

// ExpiredPurger deletes entries whose TTL has lapsed. *kv.SQL satisfies it.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type purgeExpiredJob struct {
	store   ExpiredPurger
	logg    *logger.Logger
	metrics *metrics.Maintenance
}

// NewPurgeExpiredJob removes expired cart, session, and rate limit rows.
func NewPurgeExpiredJob(store ExpiredPurger, logg *logger.Logger, m *metrics.Maintenance) (Job, error) {
	if store == nil {
		return nil, fmt.Errorf("purger required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &purgeExpiredJob{store: store, logg: logg, metrics: m}, nil
}

func (j *purgeExpiredJob) Name() string { return purgeExpiredJobName }

func (j *purgeExpiredJob) Run(ctx context.Context) error {
	n, err := j.store.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge expired entries: %w", err)
	}
	j.metrics.AddPurged(n)
	if n > 0 {
		j.logg.Info(j.logg.WithField(ctx, "purged", n), "maintenance.entries_purged")
	}
	return nil
}
