package config

import "time"

// Store drivers accepted by StoreConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER" envDefault:"file"`
	Document    string `env:"STORE_DOCUMENT" envDefault:"default"`
	MaxAttempts int    `env:"STORE_MAX_ATTEMPTS" envDefault:"5"`
	FilePath    string `env:"STORE_FILE_PATH" envDefault:"db.json"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/coinledger.db"`
	Postgres    PostgresConfig
	Redis       RedisConfig
}

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN" envDefault:""`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"0"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"0"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"0s"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"0s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// EventsConfig enables the NATS event bus when URL is set.
type EventsConfig struct {
	NATSURL string `env:"NATS_URL" envDefault:""`
}
