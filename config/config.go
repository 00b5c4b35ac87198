package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the process needs at startup. It is built once in
// main and handed to the components that need it.
type Config struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`

	Database    DatabaseConfig    `yaml:"database"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Extractor   ExtractorConfig   `yaml:"extractor"`
	Attendance  AttendanceConfig  `yaml:"attendance"`
	Admin       AdminConfig       `yaml:"admin"`
	Logging     LoggingConfig     `yaml:"logging"`

	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RecognitionConfig is calibrated per extractor. Zero values are filled in
// for dlib; the remote extractor needs an explicit tolerance and leaves the
// dimension unchecked when it is 0.
type RecognitionConfig struct {
	Tolerance    float64 `yaml:"tolerance"`
	EmbeddingDim int     `yaml:"embedding_dim"`
}

const (
	DlibTolerance    = 0.5
	DlibEmbeddingDim = 128
)

type ExtractorConfig struct {
	Kind      string        `yaml:"kind"` // "dlib" or "remote"
	ModelPath string        `yaml:"model_path"`
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
}

type AttendanceConfig struct {
	Timezone    string `yaml:"timezone"`
	SummaryCron string `yaml:"summary_cron"`
}

type AdminConfig struct {
	Username     string        `yaml:"username"`
	PasswordHash string        `yaml:"password_hash"`
	JWTKey       string        `yaml:"jwt_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// JWTClaims is the payload of admin tokens.
type JWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Enabled reports whether the admin endpoints are configured.
func (a AdminConfig) Enabled() bool {
	return a.Username != "" && a.PasswordHash != ""
}

// Location resolves the attendance timezone.
func (a AttendanceConfig) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(a.Timezone)
}

// Default returns the configuration used when nothing is set. Recognition
// settings stay zero until the extractor is known.
func Default() *Config {
	return &Config{
		Port:    "5000",
		GinMode: "release",
		Database: DatabaseConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Extractor: ExtractorConfig{
			Kind:      "dlib",
			ModelPath: "models",
			Timeout:   10 * time.Second,
		},
		Attendance: AttendanceConfig{
			Timezone: "UTC",
		},
		Admin: AdminConfig{
			TokenTTL: 12 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		CORSOrigins: []string{"*"},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE and the environment, in that order. A missing .env file is
// fine: in production the variables come from the platform.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyExtractorDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyExtractorDefaults() {
	if c.Extractor.Kind != "dlib" {
		return
	}
	if c.Recognition.Tolerance == 0 {
		c.Recognition.Tolerance = DlibTolerance
	}
	if c.Recognition.EmbeddingDim == 0 {
		c.Recognition.EmbeddingDim = DlibEmbeddingDim
	}
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.GinMode, "GIN_MODE")

	setString(&c.Database.URL, "DATABASE_URL")
	if err := setInt(&c.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"); err != nil {
		return err
	}
	if err := setInt(&c.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"); err != nil {
		return err
	}

	if err := setFloat(&c.Recognition.Tolerance, "FACE_TOLERANCE"); err != nil {
		return err
	}
	if err := setInt(&c.Recognition.EmbeddingDim, "EMBEDDING_DIM"); err != nil {
		return err
	}

	setString(&c.Extractor.Kind, "EXTRACTOR")
	setString(&c.Extractor.ModelPath, "FACE_MODEL_PATH")
	setString(&c.Extractor.URL, "EXTRACTOR_URL")
	if err := setDuration(&c.Extractor.Timeout, "EXTRACTOR_TIMEOUT"); err != nil {
		return err
	}

	setString(&c.Attendance.Timezone, "ATTENDANCE_TIMEZONE")
	setString(&c.Attendance.SummaryCron, "SUMMARY_CRON")

	setString(&c.Admin.Username, "ADMIN_USERNAME")
	setString(&c.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&c.Admin.JWTKey, "JWT_KEY")
	if err := setDuration(&c.Admin.TokenTTL, "TOKEN_TTL"); err != nil {
		return err
	}

	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.File, "LOG_FILE")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}
	return nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.Port == "" {
		return errors.New("PORT is empty")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid GIN_MODE %q (must be debug, release, or test)", c.GinMode)
	}

	switch c.Extractor.Kind {
	case "dlib":
		if c.Extractor.ModelPath == "" {
			return errors.New("FACE_MODEL_PATH is required for the dlib extractor")
		}
	case "remote":
		if c.Extractor.URL == "" {
			return errors.New("EXTRACTOR_URL is required for the remote extractor")
		}
		if c.Recognition.Tolerance == 0 {
			return errors.New("FACE_TOLERANCE is required for the remote extractor")
		}
	default:
		return fmt.Errorf("unknown extractor %q (must be dlib or remote)", c.Extractor.Kind)
	}

	if c.Recognition.Tolerance <= 0 {
		return fmt.Errorf("face tolerance must be positive, got %f", c.Recognition.Tolerance)
	}
	if c.Recognition.EmbeddingDim < 0 {
		return fmt.Errorf("embedding dimension must not be negative, got %d", c.Recognition.EmbeddingDim)
	}

	if _, err := c.Attendance.Location(); err != nil {
		return fmt.Errorf("invalid attendance timezone %q: %w", c.Attendance.Timezone, err)
	}

	if c.Admin.Enabled() && c.Admin.JWTKey == "" {
		// Admin tokens cannot be issued without a signing key.
		return errors.New("JWT_KEY is required when the admin account is configured")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
