/**
 * @description
 * This is the entrypoint for the signup service. It loads configuration,
 * wires the identity and buyer-registry clients onto the shared resilient
 * HTTP transport, constructs the orchestrator and HTTP router, and runs the
 * server with graceful shutdown.
 */
package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fiap/signup-service/internal/api"
	"github.com/fiap/signup-service/internal/app"
	"github.com/fiap/signup-service/internal/config"
	"github.com/fiap/signup-service/pkg/buyerclient"
	"github.com/fiap/signup-service/pkg/httpclient"
	"github.com/fiap/signup-service/pkg/keycloakclient"
	"github.com/fiap/signup-service/pkg/rabbitmq"
)

func maskAMQPURLForLog(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "<unparseable>"
	}
	if u.User != nil {
		u.User = url.UserPassword("****", "****")
	}
	return u.String()
}

func main() {
	// Load .env file for local development. In production, env vars are set directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load application configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	if cfg.KeycloakClientSecret == "change-me" {
		log.Println("WARNING: KEYCLOAK_CLIENT_SECRET is the development default; override it in production")
	}

	// One resilient transport shared by both remote-system clients.
	transport := httpclient.New(httpclient.Config{
		Timeout:        time.Duration(cfg.HTTPTimeoutSecs * float64(time.Second)),
		MaxAttempts:    cfg.HTTPRetries,
		InitialBackoff: time.Duration(cfg.HTTPRetryBackoffFactor * float64(time.Second)),
	})

	identity := keycloakclient.NewClient(keycloakclient.Config{
		BaseURL:      cfg.KeycloakBaseURL,
		Realm:        cfg.KeycloakRealm,
		ClientID:     cfg.KeycloakClientID,
		ClientSecret: cfg.KeycloakClientSecret,
		HTTP:         transport,
		CacheTokens:  cfg.KeycloakTokenCache,
	})
	buyers := buyerclient.NewClient(cfg.BuyersBaseURL, transport)

	// Set up the RabbitMQ producer with a bounded dial timeout; fall back to
	// a no-op publisher so signup still works when the broker is down.
	var publisher rabbitmq.Publisher
	if cfg.RabbitMQURL == "" {
		log.Println("RABBITMQ_URL not set; signup events will only be logged")
		publisher = &rabbitmq.NoopPublisher{}
	} else {
		log.Printf("RABBITMQ_URL (masked)=%s", maskAMQPURLForLog(cfg.RabbitMQURL))
		if p, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL); err != nil {
			log.Printf("WARNING: Failed to connect to RabbitMQ at startup: %v. Continuing without MQ.", err)
			publisher = &rabbitmq.NoopPublisher{}
		} else {
			publisher = p
			log.Println("RabbitMQ producer connected")
		}
	}
	defer publisher.Close()

	service := app.NewSignupService(identity, buyers, publisher, cfg.DefaultRealmRoleList, cfg.SignupEventExchange)
	router := api.NewRouter(api.NewSignupHandler(service))

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
