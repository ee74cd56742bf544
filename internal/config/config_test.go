package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			JWTSecret:        strings.Repeat("s", 32),
			PasswordHashCost: 10,
		},
		Search: SearchConfig{
			SimilarityDefault: 0.3,
			DefaultPageSize:   20,
			MaxPageSize:       100,
		},
		Analytics: AnalyticsConfig{
			CacheTTL: time.Minute,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Auth.JWTSecret = "short"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for short jwt_secret")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("error should mention jwt_secret: %v", err)
	}
}

func TestValidate_SimilarityBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value float64
		ok    bool
	}{
		{"lower bound", 0.1, true},
		{"upper bound", 1.0, true},
		{"too low", 0.05, false},
		{"too high", 1.5, false},
		{"zero", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			cfg.Search.SimilarityDefault = tt.value

			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidate_PageSizes(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Search.DefaultPageSize = 200 // above max_page_size

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default_page_size > max_page_size")
	}
}

func TestValidate_CacheTTL(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Analytics.CacheTTL = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero cache_ttl")
	}
}
