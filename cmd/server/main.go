package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/Skotchmaster/water_backoffice/internal/es"
	"github.com/Skotchmaster/water_backoffice/internal/httpserver"
	"github.com/Skotchmaster/water_backoffice/internal/logging"
	"github.com/Skotchmaster/water_backoffice/internal/mykafka"
	"github.com/Skotchmaster/water_backoffice/internal/notify"
	"github.com/Skotchmaster/water_backoffice/internal/repo"
	"github.com/Skotchmaster/water_backoffice/internal/service"
	"github.com/Skotchmaster/water_backoffice/internal/storage"
	"github.com/Skotchmaster/water_backoffice/pkg/config"
	"github.com/Skotchmaster/water_backoffice/pkg/db"
	authmw "github.com/Skotchmaster/water_backoffice/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/water_backoffice/pkg/middleware/logging"
	"github.com/Skotchmaster/water_backoffice/pkg/middleware/metrics"
	"github.com/Skotchmaster/water_backoffice/pkg/subscriberclient"
	"github.com/Skotchmaster/water_backoffice/pkg/tokens"
)

func main() {
	envFile := pflag.String("env-file", "", "optional .env file to load before reading the environment")
	skipMigrate := pflag.Bool("skip-migrate", false, "do not run schema migrations and seeding on start")
	pflag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("load env file %s: %v", *envFile, err)
		}
	}

	cfg := config.Load()
	cfg.MustCore()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	store := repo.New(gdb)
	if !*skipMigrate {
		if err := store.Migrate(ctx); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		if err := store.Seed(ctx, repo.AdminSeed(cfg.Admin)); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	iss, err := tokens.NewIssuer(tokens.Config(cfg.JWT))
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	bg := notify.NewDispatcher(notify.DefaultTimeout)

	var events service.EventPublisher
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		if prod, err = mykafka.NewProducer(cfg.KafkaBrokers); err != nil {
			log.Fatalf("kafka: %v", err)
		}
		events = prod
	} else {
		logger.Warn("KAFKA_BROKERS not set, events and reset mails are disabled")
	}

	var index service.ReportSearcher
	if cfg.ESURL != "" {
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Warn("elasticsearch unavailable, searching the database", "error", err)
		} else {
			index = es.NewReportIndex(client, cfg.ESIndex)
		}
	}

	files, closeFiles, err := uploader(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var push notify.Sender = notify.LogSender{}
	if cfg.FCMProjectID != "" {
		sender, err := notify.NewFCMSender(ctx, cfg.FCMProjectID, cfg.FCMCredentialsFile)
		if err != nil {
			log.Fatalf("fcm: %v", err)
		}
		push = sender
	}

	var subscribers subscriberclient.API = subscriberclient.NewClient(subscriberclient.Config{
		BaseURL:        cfg.Subscribers.BaseURL,
		CommentBaseURL: cfg.Subscribers.CommentBaseURL,
		HistoryBaseURL: cfg.Subscribers.HistoryBaseURL,
		AuthID:         cfg.Subscribers.AuthID,
		AuthKey:        cfg.Subscribers.AuthKey,
		Timeout:        cfg.Subscribers.Timeout,
	})
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		subscribers = subscriberclient.NewCached(subscribers, rdb, cfg.Subscribers.CacheTTL)
	}

	reg := metrics.NewRegistry(cfg.ServiceName)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(reg.Middleware())
	e.Use(loggingmw.RequestLogger(logger))
	if len(cfg.FrontendURL) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.FrontendURL,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	httpserver.Register(e, &httpserver.Deps{
		DB:      gdb,
		Auth:    authmw.NewAuth(iss),
		Metrics: reg,
		Account: &httpserver.AccountHTTP{
			Auth:  &service.AuthService{Repo: store, Tokens: iss, Events: events, Bg: bg, MailTopic: cfg.MailTopic},
			Roles: &service.RoleService{Repo: store},
		},
		Reports: &httpserver.ReportHTTP{Svc: &service.ReportService{
			Repo:        store,
			Files:       files,
			Validator:   storage.NewFileValidator(cfg.Storage.AllowedExts, cfg.Storage.AllowedMIMEs, cfg.Storage.MaxUploadMB),
			Index:       index,
			Events:      events,
			Bg:          bg,
			EventsTopic: cfg.EventsTopic,
		}},
		Communiques:   &httpserver.CommuniqueHTTP{Svc: &service.CommuniqueService{Repo: store, Push: push, Bg: bg}},
		Reference:     &httpserver.ReferenceHTTP{Svc: &service.ReferenceService{Repo: store}},
		Registrations: &httpserver.RegistrationHTTP{Svc: &service.RegistrationService{Repo: store, Push: push, Bg: bg}},
		Subscribers:   &httpserver.SubscriberHTTP{Svc: &service.SubscriberService{API: subscribers}},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := bg.Wait(shutdownCtx); err != nil {
		logger.Warn("background work still running", "error", err)
	}
	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}
	if err := closeFiles(); err != nil {
		logger.Error("storage close error", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}
	logger.Info("shutdown complete")
}

// uploader picks S3 when a bucket is configured, then GCS. Without either,
// report creation fails with an internal error.
func uploader(ctx context.Context, sc config.StorageConfig) (storage.Uploader, func() error, error) {
	noop := func() error { return nil }
	switch {
	case sc.S3Bucket != "":
		u, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:       sc.S3Bucket,
			Endpoint:     sc.S3Endpoint,
			AccessKey:    sc.S3AccessKey,
			SecretKey:    sc.S3SecretKey,
			PublicDomain: sc.S3PublicDomain,
			Prefix:       sc.Prefix,
		})
		return u, noop, err
	case sc.GCSBucket != "":
		u, err := storage.NewGCSUploader(ctx, sc.GCSBucket, sc.GCSCredentials, sc.Prefix)
		if err != nil {
			return nil, noop, err
		}
		return u, u.Close, nil
	default:
		logging.FromContext(ctx).Warn("no upload backend configured, report images are disabled")
		return storage.Disabled{}, noop, nil
	}
}
