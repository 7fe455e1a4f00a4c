package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type BookingConfig struct {
	// ExpiryTimeout is how long a pending reservation may stay unpaid
	// before the sweeper expires it.
	ExpiryTimeout time.Duration
	// SweepInterval is how often the sweeper scans for stale reservations.
	SweepInterval time.Duration
	// Currency used for reservation amounts.
	Currency string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("BOOKING_EXPIRY_MINUTES", 15)
	viper.SetDefault("SWEEPER_INTERVAL_SECONDS", 60)
	viper.SetDefault("CURRENCY", "INR")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Booking: BookingConfig{
			ExpiryTimeout: time.Duration(viper.GetInt("BOOKING_EXPIRY_MINUTES")) * time.Minute,
			SweepInterval: time.Duration(viper.GetInt("SWEEPER_INTERVAL_SECONDS")) * time.Second,
			Currency:      viper.GetString("CURRENCY"),
		},
	}

	return config, nil
}
