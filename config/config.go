package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	FrontendURL string
	Checkout    CheckoutConfig
	Mongo       MongoConfig
	JWT         JWTConfig
	Stripe      StripeConfig
	Cloudinary  CloudinaryConfig
}

type CheckoutConfig struct {
	// Timeout bounds each gateway and storage call made while serving a request.
	Timeout time.Duration
}

type MongoConfig struct {
	URI      string
	Database string
}

type JWTConfig struct {
	Secret   string
	Audience string
	Issuer   string
}

type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Load reads .env when present, then the process environment. Values already
// set in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	timeout, err := time.ParseDuration(getEnv("CHECKOUT_TIMEOUT", "15s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("CHECKOUT_TIMEOUT: invalid duration %q", os.Getenv("CHECKOUT_TIMEOUT"))
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		Checkout:    CheckoutConfig{Timeout: timeout},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGODB_CONNECTION_STRING"),
			Database: getEnv("MONGODB_DATABASE", "food-ordering"),
		},
		JWT: JWTConfig{
			Secret:   os.Getenv("JWT_SECRET"),
			Audience: os.Getenv("JWT_AUDIENCE"),
			Issuer:   os.Getenv("JWT_ISSUER"),
		},
		Stripe: StripeConfig{
			APIKey:        os.Getenv("STRIPE_API_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := []struct{ key, value string }{
		{"MONGODB_CONNECTION_STRING", c.Mongo.URI},
		{"JWT_SECRET", c.JWT.Secret},
		{"STRIPE_API_KEY", c.Stripe.APIKey},
		{"STRIPE_WEBHOOK_SECRET", c.Stripe.WebhookSecret},
		{"CLOUDINARY_CLOUD_NAME", c.Cloudinary.CloudName},
		{"CLOUDINARY_API_KEY", c.Cloudinary.APIKey},
		{"CLOUDINARY_API_SECRET", c.Cloudinary.APISecret},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
