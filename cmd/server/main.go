package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/campusportal/student-records/internal/api"
	"github.com/campusportal/student-records/internal/api/handler"
	"github.com/campusportal/student-records/internal/core/ports"
	"github.com/campusportal/student-records/internal/core/service"
	"github.com/campusportal/student-records/internal/infrastructure/config"
	"github.com/campusportal/student-records/internal/infrastructure/db/mongo"
	"github.com/campusportal/student-records/internal/infrastructure/db/redis"
	"github.com/campusportal/student-records/internal/infrastructure/queue"
	"github.com/campusportal/student-records/internal/infrastructure/security"
	"github.com/campusportal/student-records/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "student-records",
	})
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting")

	store, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = store.Close() }()

	users, err := store.Users(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("user repository")
	}
	students, err := store.Students(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("student repository")
	}

	// Without Redis the service still runs: the unique email index guards provisioning
	// and logout cannot revoke tokens.
	var (
		locker      ports.KeyLocker
		revocations ports.RevocationList
		rdb         *goredis.Client
	)
	rdb, err = redis.Open(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, email locks and token revocation disabled")
	} else {
		defer rdb.Close()
		locker = redis.NewKeyLocker(rdb, cfg.Reconcile.LockTTL, logger.Component("email_lock"))
		revocations = redis.NewRevocationList(rdb)
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens, err := security.NewJWTIssuer(security.TokenConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.JWTTTL,
		Issuer: cfg.Auth.JWTIssuer,
	}, revocations)
	if err != nil {
		log.Fatal().Err(err).Msg("token issuer")
	}

	authenticator := service.NewCredentialAuthenticator(users, hasher)
	authService := service.NewAuthService(users, hasher, authenticator, tokens, revocations, logger.Component("auth"))
	reconciler := service.NewAccountReconciler(users, hasher, locker, cfg.Auth.DefaultStudentPassword, logger.Component("reconciler"))
	dispatcher := queue.NewDispatcher(cfg.Reconcile.Workers, reconciler, logger.Component("dispatcher"))
	studentService := service.NewStudentService(students, reconciler, dispatcher, logger.Component("students"))

	if err := authService.EnsureAdmin(ctx, ports.AdminInput{
		Name:     cfg.Admin.Name,
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap")
	}

	health := map[string]handler.Pinger{
		"mongodb": store,
	}
	if rdb != nil {
		health["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Students: studentService,
		Tokens:   tokens,
		Health:   health,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	log.Info().Msg("server stopped")
}
