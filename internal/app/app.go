package app

import (
	"fmt"
	"net/http"

	"github.com/mvickers/leaguedesk/internal/config"
	"github.com/mvickers/leaguedesk/internal/infrastructure/account/sessions"
	"github.com/mvickers/leaguedesk/internal/infrastructure/repository/kvstore"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
	"github.com/mvickers/leaguedesk/internal/interfaces/httpapi"
	"github.com/mvickers/leaguedesk/internal/platform/cache"
	idgen "github.com/mvickers/leaguedesk/internal/platform/id"
	"github.com/mvickers/leaguedesk/internal/platform/logging"
	"github.com/mvickers/leaguedesk/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	kv := store.NewRedisKV(store.RedisConfig{
		Addr:           cfg.RedisAddr,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		CircuitBreaker: cfg.RedisCircuit,
	}, logger)

	teamRepo := kvstore.NewTeamRepository(kv)
	membershipRepo := kvstore.NewMembershipRepository(kv)
	inviteRepo := kvstore.NewInviteRepository(kv)
	leagueRepo := kvstore.NewLeagueRepository(kv)
	directoryRepo := kvstore.NewDirectoryRepository(kv)

	var cacheStore *cache.Store
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
	}

	membershipSvc := usecase.NewMembershipService(teamRepo, membershipRepo, leagueRepo, logger)
	teamSvc := usecase.NewTeamService(teamRepo, leagueRepo, directoryRepo, membershipSvc, idgen.NewRandomGenerator(), logger)
	inviteSvc := usecase.NewInviteService(teamRepo, inviteRepo, logger)
	reconcileSvc := usecase.NewReconcileService(teamRepo, directoryRepo, cfg.StaticLeagueIDs, logger)
	adminSvc := usecase.NewAdminService(leagueRepo, logger)
	directorySvc := usecase.NewDirectoryService(leagueRepo, teamRepo, directoryRepo, cacheStore)

	verifier := sessions.NewVerifier(kv)

	handler := httpapi.NewHandler(teamSvc, membershipSvc, inviteSvc, reconcileSvc, adminSvc, directorySvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.SuperAdminUserIDs, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
