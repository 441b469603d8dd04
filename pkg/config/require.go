package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustCore stops the process when a value the auth core cannot run without is absent.
func (c Config) MustCore() {
	MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(c.JWT.Secret, "JWT_SECRET")
	MustNonEmpty(c.JWT.Issuer, "JWT_ISSUER")
	MustNonEmpty(c.JWT.Audience, "JWT_AUDIENCE")
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		log.Fatalf("JWT_EXPIRY_MINUTES and JWT_REFRESH_EXPIRY_MINUTES must be positive")
	}
}
