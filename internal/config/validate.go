package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Auth.PasswordHashCost < 4 || c.Auth.PasswordHashCost > 31 {
		return fmt.Errorf("auth.password_hash_cost must be in [4,31] (got %d)", c.Auth.PasswordHashCost)
	}

	if c.Search.SimilarityDefault < 0.1 || c.Search.SimilarityDefault > 1.0 {
		return fmt.Errorf("search.similarity_default must be in [0.1,1.0] (got %v)", c.Search.SimilarityDefault)
	}

	if c.Search.MaxPageSize < 1 {
		return fmt.Errorf("search.max_page_size must be >= 1 (got %d)", c.Search.MaxPageSize)
	}
	if c.Search.DefaultPageSize < 1 || c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size must be in [1,%d] (got %d)",
			c.Search.MaxPageSize, c.Search.DefaultPageSize)
	}

	if c.Analytics.CacheTTL <= 0 {
		return fmt.Errorf("analytics.cache_ttl must be positive (got %v)", c.Analytics.CacheTTL)
	}

	return nil
}
