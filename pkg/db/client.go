package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
)

// Client owns a GORM connection pool for the SQL storage drivers.
type Client struct {
	conn   *gorm.DB
	driver string
}

// New connects to Postgres and applies the pool limits from cfg.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}
	dialector := postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true})
	return connect(ctx, "postgres", dialector, logg, func(pool *sql.DB) {
		if cfg.MaxOpenConns > 0 {
			pool.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			pool.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	})
}

// NewSQLite opens a file or in-memory SQLite database. Writers are
// serialized through a single connection.
func NewSQLite(ctx context.Context, dsn string, logg *logger.Logger) (*Client, error) {
	if dsn == "" {
		return nil, errors.New("sqlite DSN is required")
	}
	return connect(ctx, "sqlite", sqlite.Open(dsn), logg, func(pool *sql.DB) {
		pool.SetMaxOpenConns(1)
	})
}

func connect(ctx context.Context, driver string, dialector gorm.Dialector, logg *logger.Logger, tune func(*sql.DB)) (*Client, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Discard.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", driver, err)
	}
	pool, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("%s pool handle: %w", driver, err)
	}
	tune(pool)

	if logg != nil {
		logg.Info(logg.WithField(ctx, "driver", driver), "db.connected")
	}
	return &Client{conn: conn, driver: driver}, nil
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Driver names the dialect the client was opened with.
func (c *Client) Driver() string {
	return c.driver
}

// SQL exposes the database/sql pool for goose.
func (c *Client) SQL() (*sql.DB, error) {
	return c.conn.DB()
}

func (c *Client) Ping(ctx context.Context) error {
	pool, err := c.SQL()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

func (c *Client) Close() error {
	pool, err := c.SQL()
	if err != nil {
		return err
	}
	return pool.Close()
}
