package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every process-level setting. SMTP settings live in pkg/mailer,
// which parses its own environment block.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	JWTSecret string `env:"JWT_SECRET,required"`

	// GoogleProjectID selects the GCP project for Firestore and Pub/Sub.
	GoogleProjectID string `env:"GOOGLE_PROJECT_ID,required"`
	// PubSubTopic receives Firestore document-created events.
	PubSubTopic string `env:"PUBSUB_TOPIC" envDefault:"store-events"`
	// FirebaseCredentials is a service-account key file path. Empty means
	// application default credentials.
	FirebaseCredentials string `env:"FIREBASE_CREDENTIALS"`
}

// Load reads .env if present and parses the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}
