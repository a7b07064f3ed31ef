package persistence

import (
	"fmt"
	"net/url"
	"time"

	"content-platform/infrastructure/configuration"
	"content-platform/infrastructure/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens the gorm pool for the configured vendor. The caller owns the
// returned handle and passes it to the repositories; close it with Close.
func NewDB(cfg configuration.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Vendor {
	case "", "postgres":
		dsn, err := postgresDSN(cfg)
		if err != nil {
			return nil, err
		}
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(mysqlDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported database vendor %q", cfg.Vendor)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.GetLogger().WithField("vendor", cfg.Vendor).Info("Database connected")
	return db, nil
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// postgresDSN returns cfg.URL with TimeZone=UTC enforced, or builds a URL from
// the Psql section.
func postgresDSN(cfg configuration.Database) (string, error) {
	raw := cfg.URL
	if raw == "" {
		p := cfg.Psql
		u := &url.URL{Scheme: "postgres", Host: fmt.Sprintf("%s:%s", p.Host, p.Port), Path: "/" + p.Name}
		if p.User != "" {
			u.User = url.UserPassword(p.User, p.Password)
		}
		q := url.Values{}
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
		raw = u.String()
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	q := u.Query()
	if q.Get("TimeZone") == "" {
		q.Set("TimeZone", "UTC")
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func mysqlDSN(cfg configuration.Database) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	m := cfg.MySql
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", m.User, m.Password, m.Host, m.Port, m.Name)
}
