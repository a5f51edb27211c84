// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	seedAdmin      = pflag.Bool("seed-admin", false, "Creates the bootstrap admin account on startup if it doesn't exist")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
	validBackends  = []string{"database", "memory"}
)

// SeedAdmin reports whether the bootstrap admin flag was passed
func SeedAdmin() bool {
	return *seedAdmin
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("store.backend", "store_backend")

	v.BindEnv("jwt.secret", "jwt_secret")

	v.BindEnv("plan.free_limit", "plan_free_limit")
	v.BindEnv("plan.pro_limit", "plan_pro_limit")
	v.BindEnv("plan.pro_price", "plan_pro_price")

	v.BindEnv("stripe.secret_key", "stripe_secret_key")
	v.BindEnv("stripe.price_id", "stripe_price_id")
	v.BindEnv("stripe.webhook_secret", "stripe_webhook_secret")

	v.BindEnv("dispatch.enabled", "dispatch_enabled")
	v.BindEnv("dispatch.interval", "dispatch_interval")
	v.BindEnv("redis.addr", "redis_addr")
	v.BindEnv("redis.password", "redis_password")
	v.BindEnv("redis.db", "redis_db")

	v.BindEnv("admin.username", "admin_username")
	v.BindEnv("admin.email", "admin_email")
	v.BindEnv("admin.password", "admin_password")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "reminders.db")

	v.SetDefault("store.backend", "database")

	v.SetDefault("plan.free_limit", 10)
	v.SetDefault("plan.pro_limit", 100)
	v.SetDefault("plan.pro_price", 9.99)

	v.SetDefault("dispatch.enabled", false)
	v.SetDefault("dispatch.interval", "@hourly")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if !slices.Contains(validBackends, v.GetString("store.backend")) {
		return errors.New("invalid store backend provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if v.GetString("jwt.secret") == "" {
		return errors.New("jwt.secret is missing, set it in config.toml or the JWT_SECRET environment variable")
	}

	if v.GetInt("plan.free_limit") <= 0 || v.GetInt("plan.pro_limit") <= 0 {
		return errors.New("plan limits must be bigger than 0")
	}

	if v.GetString("stripe.secret_key") == "" {
		zap.L().Warn("No stripe.secret_key configured, billing endpoints will be disabled")
	} else if v.GetString("stripe.price_id") == "" {
		return errors.New("stripe.price_id is required when a stripe key is set")
	}

	if v.GetBool("dispatch.enabled") && v.GetString("redis.addr") == "" {
		return errors.New("redis.addr is required when the dispatch worker is enabled")
	}

	return nil
}
