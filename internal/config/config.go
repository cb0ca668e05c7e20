package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bazarchi/backend/internal/models"
)

type Config struct {
	Port        int
	DatabaseURL string

	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	KafkaBrokers []string

	LogLevel string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		Port:        EnvIntDefault("PORT", 3000),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AccessSecret:  []byte(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshSecret: []byte(os.Getenv("REFRESH_TOKEN_SECRET")),
		AccessTTL:     EnvDurationDefault("ACCESS_TOKEN_EXPIRES_IN", 15*time.Minute),
		RefreshTTL:    EnvDurationDefault("REFRESH_TOKEN_EXPIRES_IN", 7*24*time.Hour),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
	}
}

func (c *Config) MustValidate() {
	MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(c.AccessSecret, "ACCESS_TOKEN_SECRET")
	MustNonEmptyBytes(c.RefreshSecret, "REFRESH_TOKEN_SECRET")
}

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// InitDB opens the postgres connection, tunes the pool and migrates every
// entity schema. The returned handle is passed to each handler explicitly,
// there is no package-level connection.
func InitDB(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("подключение к БД: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("получение sql.DB: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping БД: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Owner{},
		&models.Product{},
		&models.Certificate{},
		&models.Category{},
		&models.Order{},
		&models.DeliveryAddress{},
		&models.CartItem{},
		&models.Promotion{},
		&models.News{},
	); err != nil {
		return fmt.Errorf("не удалось выполнить миграцию: %w", err)
	}
	return nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
