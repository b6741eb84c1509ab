// Package postgres provides PostgreSQL database connection and management
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// ConnectionManager owns the GORM handle used by the repositories and the
// pgx pool used for vector queries
type ConnectionManager struct {
	config *config.Config
	logger *zap.Logger
	db     *gorm.DB
	sqlDB  *sql.DB
	pool   *pgxpool.Pool
}

// NewConnectionManager opens the primary connection, registers read
// replicas and creates the pgx pool
func NewConnectionManager(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ConnectionManager, error) {
	cm := &ConnectionManager{config: cfg, logger: log}

	if err := cm.initializePrimaryConnection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize primary connection: %w", err)
	}

	if err := cm.initializeReadReplicas(); err != nil {
		log.Warn("Failed to initialize read replicas", zap.Error(err))
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.GetPostgresURL())
	if err != nil {
		cm.Close()
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	cm.pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		cm.Close()
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	log.Info("Database connection manager initialized",
		zap.String("host", cfg.Database.Host),
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("replicas", len(cfg.Database.Replicas)),
	)

	return cm, nil
}

func (cm *ConnectionManager) initializePrimaryConnection(ctx context.Context) error {
	db, err := gorm.Open(postgres.Open(cm.config.GetDSN()), &gorm.Config{
		Logger:                 NewGORMLogger(cm.logger, cm.config.App.LogLevel),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cm.config.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cm.config.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cm.config.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cm.db = db
	cm.sqlDB = sqlDB
	return nil
}

// initializeReadReplicas routes reads to the configured replica hosts
func (cm *ConnectionManager) initializeReadReplicas() error {
	if len(cm.config.Database.Replicas) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, len(cm.config.Database.Replicas))
	for i, host := range cm.config.Database.Replicas {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			host,
			cm.config.Database.Port,
			cm.config.Database.Username,
			cm.config.Database.Password,
			cm.config.Database.Database,
			cm.config.Database.SSLMode,
		)
		replicas[i] = postgres.Open(dsn)
	}

	err := cm.db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}).
		SetMaxOpenConns(cm.config.Database.MaxOpenConns).
		SetConnMaxLifetime(cm.config.Database.ConnMaxLifetime))
	if err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}

	cm.logger.Info("Read replicas configured", zap.Int("replica_count", len(replicas)))
	return nil
}

// DB returns the GORM handle
func (cm *ConnectionManager) DB() *gorm.DB {
	return cm.db
}

// Pool returns the pgx pool
func (cm *ConnectionManager) Pool() *pgxpool.Pool {
	return cm.pool
}

// Ping checks the primary connection
func (cm *ConnectionManager) Ping(ctx context.Context) error {
	if err := cm.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("primary database ping failed: %w", err)
	}
	return nil
}

// Close closes all database connections
func (cm *ConnectionManager) Close() error {
	if cm.pool != nil {
		cm.pool.Close()
	}
	if cm.sqlDB != nil {
		if err := cm.sqlDB.Close(); err != nil {
			cm.logger.Error("Failed to close primary database", zap.Error(err))
			return err
		}
	}
	return nil
}

// NewGORMLogger adapts zap to GORM's logger. Slow queries are logged at warn.
func NewGORMLogger(log *zap.Logger, level string) logger.Interface {
	logLevel := logger.Silent
	switch level {
	case "debug":
		logLevel = logger.Info
	case "info", "warn":
		logLevel = logger.Warn
	case "error":
		logLevel = logger.Error
	}

	return logger.New(
		&gormLogWriter{logger: log.Named("gorm")},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

type gormLogWriter struct {
	logger *zap.Logger
}

func (w *gormLogWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(fmt.Sprintf(format, args...))
}
