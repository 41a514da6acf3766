// Package config loads the service configuration from environment
// variables.
package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the mod repository server.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `env:"LISTEN" envDefault:":3000"`

	// PublicURL is the canonical base URL clients use to reach the
	// service. The manifest uuid and the OAuth redirect URL are derived
	// from it.
	PublicURL string `env:"PUBLIC_URL,required,notEmpty"`

	// Title is the display name published in the manifest.
	Title string `env:"TITLE" envDefault:"Mod Repository"`

	// JWTSecret signs session tokens (HS256).
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	DiscordClientID     string `env:"DISCORD_CLIENT_ID,required,notEmpty"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET,required,notEmpty"`
	DiscordGuildID      string `env:"DISCORD_GUILD_ID,required,notEmpty"`
	DiscordGuildRoleID  string `env:"DISCORD_GUILD_ROLE_ID,required,notEmpty"`

	// Object store settings. Credentials follow the MinIO client's own
	// environment convention.
	Bucket         string `env:"S3_BUCKET,required,notEmpty"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinioSecure    bool   `env:"MINIO_SECURE" envDefault:"false"`
}

// Load parses the configuration from the process environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	if _, err := url.Parse(cfg.PublicURL); err != nil {
		return nil, fmt.Errorf("invalid PUBLIC_URL: %w", err)
	}

	return &cfg, nil
}
