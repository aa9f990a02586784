// Package warehouse connects the snapshot binary to the analytical store
// that the seeded landing files are loaded into.
package warehouse

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/angelmondragon/edqm-seeder/pkg/config"
	"github.com/angelmondragon/edqm-seeder/pkg/errors"
	"github.com/angelmondragon/edqm-seeder/pkg/logger"
)

const (
	pingTimeout  = 10 * time.Second
	maxOpenConns = 5
	maxIdleConns = 2
	connLifetime = 10 * time.Minute
)

// Snowflake wraps a pooled connection to the reporting warehouse.
type Snowflake struct {
	db   *sqlx.DB
	cfg  config.SnowflakeConfig
	logg *logger.Logger
}

// Connect opens and verifies a Snowflake connection pool.
func Connect(ctx context.Context, cfg config.SnowflakeConfig, logg *logger.Logger) (*Snowflake, error) {
	if !cfg.Configured() {
		return nil, errors.New(errors.CodePrecondition, "snowflake connection is not configured")
	}

	dsn, err := sf.DSN(&sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Warehouse: cfg.Warehouse,
		Role:      cfg.Role,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "building snowflake dsn")
	}

	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "opening snowflake connection")
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.CodeDependency, err, "pinging snowflake")
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"account":   cfg.Account,
		"database":  cfg.Database,
		"schema":    cfg.Schema,
		"warehouse": cfg.Warehouse,
	}), "connected to snowflake")

	return &Snowflake{db: db, cfg: cfg, logg: logg}, nil
}

// DB exposes the underlying pool for query execution.
func (s *Snowflake) DB() *sqlx.DB {
	return s.db
}

func (s *Snowflake) Close() error {
	return s.db.Close()
}
