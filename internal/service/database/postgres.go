package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/kapu/sdg-pulse/internal/constants"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresService owns the export database handle.
type PostgresService struct {
	db     *sql.DB
	logger *zap.Logger
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN renders the config as a postgres:// URL so credentials with spaces or
// quotes survive intact.
func (cfg PostgresConfig) DSN() string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// NewPostgresService opens the pool and verifies it with a ping bounded by
// ctx and the configured connect timeout.
func NewPostgresService(ctx context.Context, cfg PostgresConfig, logger *zap.Logger) (*PostgresService, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(constants.PostgresPool.MaxOpenConns)
	db.SetMaxIdleConns(constants.PostgresPool.MaxIdleConns)
	db.SetConnMaxLifetime(constants.PostgresPool.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, constants.PostgresPool.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", cfg.Host, err)
	}

	logger.Info("Export database ready",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Int("max_open_conns", constants.PostgresPool.MaxOpenConns),
	)
	return NewPostgresServiceFromDB(db, logger), nil
}

// NewPostgresServiceFromDB wraps an already opened handle.
func NewPostgresServiceFromDB(db *sql.DB, logger *zap.Logger) *PostgresService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresService{db: db, logger: logger}
}

func (ps *PostgresService) DB() *sql.DB {
	return ps.db
}

func (ps *PostgresService) Close() error {
	if ps.db == nil {
		return nil
	}
	return ps.db.Close()
}
