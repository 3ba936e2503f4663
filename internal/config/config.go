// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"CLUB_DB_PATH" envDefault:"./data/clubboard.db"`
	SessionSecret string `env:"CLUB_SESSION_SECRET,required"`
	ServerHost    string `env:"CLUB_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CLUB_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"CLUB_ENV" envDefault:"development"`
	LogLevel      string `env:"CLUB_LOG_LEVEL" envDefault:"info"`

	// Passcode digests gating tier elevation. Both are argon2id encoded
	// hashes produced with `clubboard -hash-passcode`; the plaintext
	// passcodes never appear in the environment.
	MemberPasscodeHash string `env:"CLUB_MEMBER_PASSCODE_HASH,required"`
	AdminPasscodeHash  string `env:"CLUB_ADMIN_PASSCODE_HASH,required"`

	// Seeding configuration
	DoSeed bool `env:"CLUB_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("CLUB_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Both elevation digests must be well-formed at startup. A malformed
	// digest would silently reject every passcode at runtime, so treat it
	// as a fatal configuration error instead.
	if err := validatePasscodeHash("CLUB_MEMBER_PASSCODE_HASH", cfg.MemberPasscodeHash); err != nil {
		return nil, err
	}
	if err := validatePasscodeHash("CLUB_ADMIN_PASSCODE_HASH", cfg.AdminPasscodeHash); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validatePasscodeHash checks that a configured digest looks like an
// argon2id PHC string ($argon2id$v=..$m=..,t=..,p=..$salt$hash).
func validatePasscodeHash(name, encoded string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return fmt.Errorf("%s is not a valid argon2id hash; "+
			"generate one with: clubboard -hash-passcode <passcode>", name)
	}
	return nil
}
