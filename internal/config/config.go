/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the request-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL              string `mapstructure:"RABBITMQ_URL"`
	RequestEventQueue        string `mapstructure:"REQUEST_EVENT_QUEUE"`
	InternalAPIKey           string `mapstructure:"INTERNAL_API_KEY"`
	PushGatewayURL           string `mapstructure:"PUSH_GATEWAY_URL"`
	PushAPIKey               string `mapstructure:"PUSH_API_KEY"`
	AppDeepLinkURL           string `mapstructure:"APP_DEEP_LINK_URL"`
	RequestRetentionHours    int    `mapstructure:"REQUEST_RETENTION_HOURS"`
	SweepCronSpec            string `mapstructure:"SWEEP_CRON_SPEC"`
	SweepMaxBatchSize        int    `mapstructure:"SWEEP_MAX_BATCH_SIZE"`
	NotifyRateLimitPerMinute int    `mapstructure:"NOTIFY_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REQUEST_EVENT_QUEUE", "request_service.request_updates")
	viper.SetDefault("APP_DEEP_LINK_URL", "https://letspay.netlify.app")
	viper.SetDefault("REQUEST_RETENTION_HOURS", 24)
	// Every four hours, matching the cadence the expiry job has always run at.
	viper.SetDefault("SWEEP_CRON_SPEC", "0 */4 * * *")
	viper.SetDefault("SWEEP_MAX_BATCH_SIZE", 500)
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "letspay:rate_limit")
	viper.SetDefault("NOTIFY_RATE_LIMIT_PER_MINUTE", 60)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REQUEST_EVENT_QUEUE")
	_ = viper.BindEnv("INTERNAL_API_KEY", "INTERNAL_API_KEY", "REQUEST_SERVICE_INTERNAL_API_KEY")
	_ = viper.BindEnv("PUSH_GATEWAY_URL")
	_ = viper.BindEnv("PUSH_API_KEY")
	_ = viper.BindEnv("APP_DEEP_LINK_URL")
	_ = viper.BindEnv("REQUEST_RETENTION_HOURS")
	_ = viper.BindEnv("SWEEP_CRON_SPEC")
	_ = viper.BindEnv("SWEEP_MAX_BATCH_SIZE")
	_ = viper.BindEnv("NOTIFY_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.InternalAPIKey = strings.TrimSpace(config.InternalAPIKey)
	if config.InternalAPIKey == "" {
		config.InternalAPIKey = strings.TrimSpace(os.Getenv("REQUEST_SERVICE_INTERNAL_API_KEY"))
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "letspay:rate_limit"
	}
	config.SweepCronSpec = strings.TrimSpace(config.SweepCronSpec)
	if config.SweepCronSpec == "" {
		config.SweepCronSpec = "0 */4 * * *"
	}

	if config.RequestRetentionHours <= 0 {
		log.Printf("level=warn component=config msg=\"invalid request retention; using default\" hours=%d", config.RequestRetentionHours)
		config.RequestRetentionHours = 24
	}
	if config.SweepMaxBatchSize <= 0 {
		config.SweepMaxBatchSize = 500
	}
	if config.NotifyRateLimitPerMinute < 0 {
		config.NotifyRateLimitPerMinute = 0
	}

	return
}
