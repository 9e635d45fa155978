package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	httpctx "github.com/dtroode/authkeeper/internal/api/http/context"
	"github.com/dtroode/authkeeper/internal/api/http/handler"
	"github.com/dtroode/authkeeper/internal/api/http/router"
	"github.com/dtroode/authkeeper/internal/config"
	"github.com/dtroode/authkeeper/internal/limiter"
	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
	"github.com/dtroode/authkeeper/internal/oauth"
	"github.com/dtroode/authkeeper/internal/password"
	"github.com/dtroode/authkeeper/internal/repository/postgres"
	"github.com/dtroode/authkeeper/internal/server"
	"github.com/dtroode/authkeeper/internal/service"
	storage "github.com/dtroode/authkeeper/internal/storage/minio"
	"github.com/dtroode/authkeeper/internal/token"
)

const sweepInterval = time.Hour

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	tokenRepo := postgres.NewRefreshTokenRepository(db)
	stateRepo := postgres.NewOAuthStateRepository(db)
	linkRepo := postgres.NewProviderLinkRepository(db)

	tokenManager := token.NewJWT(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	tokenService := service.NewTokenService(tokenManager, tokenRepo, logger)
	stateService := service.NewStateManager(cfg.Auth.StateSecret, stateRepo, logger)

	avatars := makeAvatarMirror(ctx, cfg, logger)
	signInLimiter := makeSignInLimiter(cfg, logger)

	authService := service.NewAuth(userRepo, linkRepo, password.NewBcrypt(0),
		tokenService, avatars, signInLimiter, logger)

	providers := map[string]handler.Provider{}
	if cfg.Google.ClientID != "" {
		providers[oauth.ProviderGoogle] = oauth.NewGoogle(
			cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}

	rt := router.New(authService, tokenService, stateService, providers,
		httpctx.NewManager(), cfg.Auth.CookieSecure, cfg.JWT.RefreshTTL, logger)
	httpServer := server.NewHTTPServer(rt.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runSweepers(ctx, tokenService, stateService, logger)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// runSweepers periodically deletes expired refresh tokens and oauth states.
// Sweeping is hygiene, not correctness: expired rows are already invisible
// to every query.
func runSweepers(ctx context.Context, tokens *service.TokenService, states *service.StateManager, logger *logger.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tokens.SweepExpired(ctx); err != nil {
				logger.Error("refresh token sweep failed", "error", err)
			}
			if err := states.SweepExpired(ctx); err != nil {
				logger.Error("oauth state sweep failed", "error", err)
			}
		}
	}
}

// makeAvatarMirror builds the avatar mirror when object storage is
// configured; nil disables mirroring.
func makeAvatarMirror(ctx context.Context, cfg *config.Config, logger *logger.Logger) *service.AvatarMirror {
	if cfg.Storage.Endpoint == "" {
		return nil
	}

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}

	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	return service.NewAvatarMirror(storageClient, cfg.Storage.PublicURL, logger)
}

// makeSignInLimiter builds the redis-backed throttle when redis is
// configured; nil disables throttling.
func makeSignInLimiter(cfg *config.Config, logger *logger.Logger) service.SignInLimiter {
	if cfg.Redis.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	return limiter.New(client, limiter.DefaultConfig(), logger)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
