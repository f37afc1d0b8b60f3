// Command server runs the groompost HTTP API.
//
// @title        groompost API
// @version      1.0
// @description  Before/after posts for dog grooming salons, with AI captions and Instagram carousel publishing.
// @BasePath     /
//
// @securityDefinitions.apikey  SessionCookie
// @in                          cookie
// @name                        groompost_session
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/groompost/groompost-api/internal/api"
	"github.com/groompost/groompost-api/internal/api/middleware"
	"github.com/groompost/groompost-api/internal/core/ports"
	"github.com/groompost/groompost-api/internal/core/service"
	mongodb "github.com/groompost/groompost-api/internal/infrastructure/db/mongo"
	"github.com/groompost/groompost-api/internal/infrastructure/db/postgres"
	redisdb "github.com/groompost/groompost-api/internal/infrastructure/db/redis"
	"github.com/groompost/groompost-api/internal/infrastructure/graph"
	"github.com/groompost/groompost-api/internal/infrastructure/http/handlers"
	"github.com/groompost/groompost-api/internal/infrastructure/openai"
	"github.com/groompost/groompost-api/internal/infrastructure/queue"
	"github.com/groompost/groompost-api/internal/infrastructure/session"
	"github.com/groompost/groompost-api/internal/infrastructure/storage"
	"github.com/groompost/groompost-api/internal/pkg/config"
	"github.com/groompost/groompost-api/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "groompost-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	readiness := map[string]handlers.Check{}

	// --- Postgres ---
	pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()
	db := postgres.OpenDB(pool)
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	readiness["postgres"] = handlers.PostgresCheck(pool)
	log.Info().Msg("connected to postgres, migrations applied")

	// --- Sessions ---
	var sessionStore ports.SessionStore
	switch cfg.Session.Backend {
	case "redis":
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			URL:      cfg.Redis.URL,
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessionStore = redisdb.NewSessionStore(rdb, cfg.Session.TTL)
		readiness["redis"] = handlers.RedisCheck(rdb)
		log.Info().Msg("sessions stored in redis")
	default:
		sessionStore = session.NewMemoryStore(cfg.Session.MaxSize, cfg.Session.TTL)
		log.Warn().Msg("sessions stored in memory, they will not survive a restart")
	}

	// --- Publish audit trail (optional) ---
	var recorder ports.PublishRecorder
	if cfg.Mongo.AuditEnabled {
		client, mdb, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() { _ = mongodb.Disconnect(context.Background(), client) }()

		auditRepo := mongodb.NewPublishAuditRepository(mdb)
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			return err
		}
		dispatcher := queue.NewDispatcher(cfg.Mongo.AuditWorkers, auditRepo, log)
		dispatcher.Start(ctx)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := dispatcher.Stop(stopCtx); err != nil {
				log.Warn().Err(err).Msg("audit dispatcher did not drain")
			}
		}()
		recorder = dispatcher
		readiness["mongodb"] = handlers.MongoCheck(mdb)
		log.Info().Msg("publish audit trail enabled")
	}

	// --- Media storage ---
	store, err := storage.New(ctx, storage.Config{
		Backend: cfg.Media.Backend,
		Local:   storage.LocalConfig{Dir: cfg.Media.UploadDir},
		Cloudinary: storage.CloudinaryConfig{
			CloudName: cfg.Media.CloudinaryCloudName,
			APIKey:    cfg.Media.CloudinaryAPIKey,
			APISecret: cfg.Media.CloudinaryAPISecret,
			Folder:    cfg.Media.CloudinaryFolder,
		},
		S3: storage.S3Config{
			Bucket:        cfg.Media.S3Bucket,
			Region:        cfg.Media.S3Region,
			Endpoint:      cfg.Media.S3Endpoint,
			AccessKey:     cfg.Media.S3AccessKey,
			SecretKey:     cfg.Media.S3SecretKey,
			Prefix:        cfg.Media.S3Prefix,
			PublicBaseURL: cfg.Media.S3PublicBaseURL,
		},
	})
	if err != nil {
		return err
	}
	var uploadDir string
	if local, ok := store.(*storage.LocalStore); ok {
		uploadDir = local.Dir()
	}

	// --- Upstream APIs ---
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, caption generation will fail")
	}
	completer := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout,
	})

	graphCfg := graph.Config{
		AppID:       cfg.Instagram.AppID,
		AccessToken: cfg.Instagram.AccessToken,
		AppSecret:   cfg.Instagram.AppSecret,
		Version:     cfg.Instagram.Version,
		BaseURL:     cfg.Instagram.BaseURL,
		Timeout:     cfg.Instagram.Timeout,
	}
	graphClient, err := graph.NewClient(graphCfg)
	if err != nil {
		return err
	}
	publisher := service.NewInstagramPublisher(graphClient, graphCfg.Configured(), log)
	if publisher.Configured() {
		go func() {
			if _, err := publisher.Discover(ctx); err != nil {
				log.Warn().Err(err).Msg("instagram account discovery failed, will retry on publish")
			}
		}()
	} else {
		log.Warn().Msg("instagram credentials not set, publishing disabled")
	}

	// --- Services ---
	postService, err := service.NewPostService(postgres.NewPostRepository(db), publisher, recorder, cfg.PublicBaseURL, log)
	if err != nil {
		return err
	}

	sessions := middleware.NewSessions(
		middleware.NewCookieStore(cfg.SessionSecret, cfg.Session.TTL, cfg.CookieSecure),
		sessionStore,
	)

	e := api.NewRouter(api.Services{
		Auth:      service.NewAuthService(postgres.NewUserRepository(db), cfg.GuestLogin, log),
		Posts:     postService,
		Media:     service.NewMediaService(store, cfg.Media.MaxBytes, log),
		Captions:  service.NewCaptionService(completer, cfg.OpenAI.MaxTokens, log),
		Publisher: publisher,
	}, api.Options{
		Sessions:  sessions,
		Readiness: readiness,
		UploadDir: uploadDir,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
