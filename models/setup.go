package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"FACEATTEND/config"
)

// ConnectDatabase opens the MySQL connection pool and migrates the schema.
func ConnectDatabase(cfg config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	// 1. Build the DSN
	dsn, err := NormalizeDSN(cfg.URL)
	if err != nil {
		return nil, err
	}

	// 2. Open the connection
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// 3. Pool sizes
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	// 4. Migrate the schema
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("Database connection established")
	return db, nil
}

// Migrate creates or updates the users and attendance tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Attendance{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// NormalizeDSN accepts either a mysql:// URL (as handed out by hosting
// platforms) or a native go-sql-driver DSN and returns a native DSN with
// time parsing in UTC enabled.
func NormalizeDSN(raw string) (string, error) {
	var cfg *mysql.Config

	if strings.HasPrefix(raw, "mysql://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse database url: %w", err)
		}
		cfg = mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		if u.User != nil {
			cfg.User = u.User.Username()
			cfg.Passwd, _ = u.User.Password()
		}
		if q := u.Query(); len(q) > 0 {
			cfg.Params = make(map[string]string, len(q))
			for k := range q {
				cfg.Params[k] = q.Get(k)
			}
		}
	} else {
		var err error
		cfg, err = mysql.ParseDSN(raw)
		if err != nil {
			return "", fmt.Errorf("parse database dsn: %w", err)
		}
	}

	if cfg.DBName == "" {
		return "", fmt.Errorf("database name missing in %q", redact(raw))
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

func redact(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.User != nil {
		return u.Redacted()
	}
	if i := strings.LastIndex(raw, "@"); i >= 0 {
		return "***" + raw[i:]
	}
	return raw
}
