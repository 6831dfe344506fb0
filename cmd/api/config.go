package main

import (
	"log/slog"
	"time"

	"github.com/saminkc999/coinledger/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT"             envDefault:"5000"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL"        envDefault:"INFO"`
	LogFormat       string        `env:"APP_LOG_FORMAT"       envDefault:"json"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CoinValue       float64       `env:"COIN_VALUE"           envDefault:"0.15"`
	PaymentMethods  []string      `env:"PAYMENT_METHODS"      envDefault:"cashapp,paypal,chime"`
	Store           config.StoreConfig
	Events          config.EventsConfig
}
