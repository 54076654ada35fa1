// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/flockhub/internal/app/system/authutil"
)

const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for FlockHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: FLOCKHUB_MONGO_URI, FLOCKHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "flockhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Token configuration
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "JWT signing secret (must be strong in production)"},
	{Name: "access_token_ttl", Default: "15m", Desc: "Access token lifetime (e.g., 15m, 1h)"},
	{Name: "refresh_token_ttl", Default: "168h", Desc: "Refresh token lifetime (e.g., 168h for 7 days)"},

	// Password hashing
	{Name: "bcrypt_cost", Default: 0, Desc: "bcrypt cost (0 uses the library default)"},

	// Background roster reconciliation
	{Name: "roster_reconcile_interval", Default: "10m", Desc: "Interval between lifegroup roster repairs (0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// FLOCKHUB_* environment variables, and command-line flags, merged with
// precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FLOCKHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:       appValues.String("jwt_secret"),
		AccessTokenTTL:  appValues.Duration("access_token_ttl", 15*time.Minute),
		RefreshTokenTTL: appValues.Duration("refresh_token_ttl", 7*24*time.Hour),

		BcryptCost: appValues.Int("bcrypt_cost"),

		RosterReconcileInterval: appValues.Duration("roster_reconcile_interval", 10*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It catches configuration errors early, before any connection attempt:
// a malformed MongoDB URI, non-positive token lifetimes, or the dev
// signing secret leaking into a production deployment.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.AccessTokenTTL <= 0 || appCfg.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive (access %s, refresh %s)",
			appCfg.AccessTokenTTL, appCfg.RefreshTokenTTL)
	}
	if appCfg.RefreshTokenTTL < appCfg.AccessTokenTTL {
		return fmt.Errorf("refresh_token_ttl (%s) must not be shorter than access_token_ttl (%s)",
			appCfg.RefreshTokenTTL, appCfg.AccessTokenTTL)
	}

	if coreCfg.Env == "prod" && appCfg.JWTSecret == devJWTSecret {
		return fmt.Errorf("jwt_secret must be set to a strong value in production")
	}

	if appCfg.BcryptCost != 0 {
		authutil.SetCost(appCfg.BcryptCost)
	}

	return nil
}
