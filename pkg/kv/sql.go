package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/angelmondragon/farmfresh-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL stores entries in the kv_entries table through GORM. It works on both
// Postgres (goose migration) and SQLite (AutoMigrate).
type SQL struct {
	conn  *gorm.DB
	now   func() time.Time
	close func() error
}

// NewSQL builds a store on an open connection. closeFn, when set, is called by Close.
func NewSQL(conn *gorm.DB, closeFn func() error) *SQL {
	return &SQL{conn: conn, now: time.Now, close: closeFn}
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := s.conn.WithContext(ctx).Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if entry.Expired(s.now()) {
		if delErr := s.Delete(ctx, key); delErr != nil {
			return nil, delErr
		}
		return nil, ErrNotFound
	}
	return entry.Value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := newEntry(key, value, ttl, s.now().UTC())
	return s.conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&entry).Error
}

func (s *SQL) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.conn.WithContext(ctx).Where("key IN ?", keys).Delete(&models.KVEntry{}).Error
}

// IncrWithTTL increments a decimal counter. The first hit inserts the row with the
// TTL; later hits update it under a row lock and keep the original expiry. An
// expired row restarts the window.
func (s *SQL) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var count int64
	err := s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now().UTC()
		fresh := newEntry(key, []byte("1"), ttl, now)
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			count = 1
			return nil
		}

		var entry models.KVEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("key = ?", key).Take(&entry).Error; err != nil {
			return err
		}
		updates := map[string]any{"updated_at": now}
		if entry.Expired(now) {
			count = 1
			updates["expires_at"] = fresh.ExpiresAt
		} else {
			parsed, err := strconv.ParseInt(string(entry.Value), 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
			}
			count = parsed + 1
		}
		updates["value"] = []byte(strconv.FormatInt(count, 10))
		return tx.Model(&models.KVEntry{}).Where("key = ?", key).Updates(updates).Error
	})
	return count, err
}

func newEntry(key string, value []byte, ttl time.Duration, now time.Time) models.KVEntry {
	entry := models.KVEntry{Key: key, Value: value, UpdatedAt: now}
	if ttl > 0 {
		expires := now.Add(ttl)
		entry.ExpiresAt = &expires
	}
	if entry.Value == nil {
		entry.Value = []byte{}
	}
	return entry
}

// PurgeExpired removes entries whose TTL has elapsed.
func (s *SQL) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.conn.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&models.KVEntry{})
	return res.RowsAffected, res.Error
}

func (s *SQL) Ping(ctx context.Context) error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQL) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
