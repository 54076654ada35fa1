// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authfeature "github.com/dalemusser/flockhub/internal/app/features/auth"
	healthfeature "github.com/dalemusser/flockhub/internal/app/features/health"
	lifegroupsfeature "github.com/dalemusser/flockhub/internal/app/features/lifegroups"
	membersfeature "github.com/dalemusser/flockhub/internal/app/features/members"
	tribesfeature "github.com/dalemusser/flockhub/internal/app/features/tribes"
	usersfeature "github.com/dalemusser/flockhub/internal/app/features/users"
	tribestore "github.com/dalemusser/flockhub/internal/app/store/tribes"
	userstore "github.com/dalemusser/flockhub/internal/app/store/users"
	sysauth "github.com/dalemusser/flockhub/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. FlockHub mounts the liveness probe and the auth
// endpoints openly; every entity surface sits behind bearer-token auth.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	tokens := sysauth.NewTokenService(appCfg.JWTSecret, appCfg.AccessTokenTTL, appCfg.RefreshTokenTTL)

	r := chi.NewRouter()

	// Liveness probe for load balancers and orchestrators, mounted at
	// both / and /healthz.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/", healthfeature.Routes(healthHandler))
	r.Mount("/healthz", healthfeature.Routes(healthHandler))

	// Authentication: login and refresh are open, profile and password
	// change are guarded inside the feature's own routes.
	authHandler := authfeature.NewHandler(userstore.New(db), tokens, logger)
	r.Mount("/auth", authfeature.Routes(authHandler))

	// Entity surfaces, all behind bearer-token auth.
	r.Group(func(r chi.Router) {
		r.Use(sysauth.RequireAuth(tokens, logger))

		r.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(userstore.New(db), logger)))
		r.Mount("/tribes", tribesfeature.Routes(tribesfeature.NewHandler(tribestore.New(db), logger)))
		r.Mount("/members", membersfeature.Routes(membersfeature.NewHandler(db, logger)))
		r.Mount("/lifegroups", lifegroupsfeature.Routes(lifegroupsfeature.NewHandler(db, logger)))
	})

	return r, nil
}
