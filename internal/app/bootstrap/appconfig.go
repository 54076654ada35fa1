// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to FlockHub. The
// struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Token configuration
	JWTSecret       string        // HMAC signing secret (must be strong in production)
	AccessTokenTTL  time.Duration // Lifetime of access tokens
	RefreshTokenTTL time.Duration // Lifetime of refresh tokens

	// Password hashing cost. Lower values speed up tests; production
	// should keep the default.
	BcryptCost int

	// How often the background job recomputes lifegroup rosters from
	// member assignments. Zero disables the job.
	RosterReconcileInterval time.Duration
}
