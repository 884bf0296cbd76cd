/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables (with an
 * optional .env file for local development), providing a centralized and
 * straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 *
 * @notes
 * - The loaded Config is immutable after startup: it is constructed once in
 *   main and passed by value to each client constructor.
 * - Defaults suit local development. Production deployments must override the
 *   Keycloak credentials and both base URLs.
 */
package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the signup service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort             string  `mapstructure:"SERVER_PORT"`
	KeycloakBaseURL        string  `mapstructure:"KEYCLOAK_BASE_URL"`
	KeycloakRealm          string  `mapstructure:"KEYCLOAK_REALM"`
	KeycloakClientID       string  `mapstructure:"KEYCLOAK_CLIENT_ID"`
	KeycloakClientSecret   string  `mapstructure:"KEYCLOAK_CLIENT_SECRET"`
	KeycloakTokenCache     bool    `mapstructure:"KEYCLOAK_TOKEN_CACHE_ENABLED"`
	DefaultRealmRoles      string  `mapstructure:"DEFAULT_REALM_ROLES"`
	BuyersBaseURL          string  `mapstructure:"BUYERS_BASE_URL"`
	HTTPTimeoutSecs        float64 `mapstructure:"HTTP_TIMEOUT_SECS"`
	HTTPRetries            int     `mapstructure:"HTTP_RETRIES"`
	HTTPRetryBackoffFactor float64 `mapstructure:"HTTP_RETRY_BACKOFF_FACTOR"`
	RabbitMQURL            string  `mapstructure:"RABBITMQ_URL"`
	SignupEventExchange    string  `mapstructure:"SIGNUP_EVENT_EXCHANGE"`

	// DefaultRealmRoleList is DefaultRealmRoles split on commas, populated
	// after unmarshaling.
	DefaultRealmRoleList []string `mapstructure:"-"`
}

// LoadConfig reads configuration from environment variables from the given
// path. It uses Viper to automatically bind environment variables to the
// Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8010")
	viper.SetDefault("KEYCLOAK_BASE_URL", "http://localhost:8080")
	viper.SetDefault("KEYCLOAK_REALM", "fiap")
	viper.SetDefault("KEYCLOAK_CLIENT_ID", "admin-cli")
	viper.SetDefault("KEYCLOAK_CLIENT_SECRET", "change-me")
	viper.SetDefault("KEYCLOAK_TOKEN_CACHE_ENABLED", false)
	viper.SetDefault("DEFAULT_REALM_ROLES", "buyers_read,buyers_write")
	viper.SetDefault("BUYERS_BASE_URL", "http://localhost:8002")
	viper.SetDefault("HTTP_TIMEOUT_SECS", 10.0)
	viper.SetDefault("HTTP_RETRIES", 3)
	viper.SetDefault("HTTP_RETRY_BACKOFF_FACTOR", 0.5)
	viper.SetDefault("SIGNUP_EVENT_EXCHANGE", "signup_events")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("KEYCLOAK_BASE_URL")
	_ = viper.BindEnv("KEYCLOAK_REALM")
	_ = viper.BindEnv("KEYCLOAK_CLIENT_ID")
	_ = viper.BindEnv("KEYCLOAK_CLIENT_SECRET")
	_ = viper.BindEnv("KEYCLOAK_TOKEN_CACHE_ENABLED")
	_ = viper.BindEnv("DEFAULT_REALM_ROLES")
	_ = viper.BindEnv("BUYERS_BASE_URL")
	_ = viper.BindEnv("HTTP_TIMEOUT_SECS")
	_ = viper.BindEnv("HTTP_RETRIES", "HTTP_RETRIES", "RETRIES")
	_ = viper.BindEnv("HTTP_RETRY_BACKOFF_FACTOR", "HTTP_RETRY_BACKOFF_FACTOR", "RETRY_BACKOFF_FACTOR")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SIGNUP_EVENT_EXCHANGE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// Platform-provided PORT (e.g., Railway/Render) takes precedence.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.KeycloakBaseURL = strings.TrimRight(strings.TrimSpace(config.KeycloakBaseURL), "/")
	config.BuyersBaseURL = strings.TrimRight(strings.TrimSpace(config.BuyersBaseURL), "/")

	if config.HTTPTimeoutSecs <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive HTTP_TIMEOUT_SECS; using default\" value=%f", config.HTTPTimeoutSecs)
		config.HTTPTimeoutSecs = 10
	}
	if config.HTTPRetries <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive HTTP_RETRIES; using default\" value=%d", config.HTTPRetries)
		config.HTTPRetries = 3
	}
	if config.HTTPRetryBackoffFactor <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive HTTP_RETRY_BACKOFF_FACTOR; using default\" value=%f", config.HTTPRetryBackoffFactor)
		config.HTTPRetryBackoffFactor = 0.5
	}

	config.DefaultRealmRoleList = splitRoles(config.DefaultRealmRoles)

	return
}

func splitRoles(raw string) []string {
	roles := []string{}
	for _, role := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(role); trimmed != "" {
			roles = append(roles, trimmed)
		}
	}
	return roles
}
