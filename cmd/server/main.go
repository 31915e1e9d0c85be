package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/mkrasnov/contactbook/internal/cache"
	"github.com/mkrasnov/contactbook/internal/config"
	"github.com/mkrasnov/contactbook/internal/db"
	"github.com/mkrasnov/contactbook/internal/es"
	"github.com/mkrasnov/contactbook/internal/httpserver"
	"github.com/mkrasnov/contactbook/internal/logging"
	appmw "github.com/mkrasnov/contactbook/internal/middleware"
	authmw "github.com/mkrasnov/contactbook/internal/middleware/auth"
	"github.com/mkrasnov/contactbook/internal/mykafka"
	"github.com/mkrasnov/contactbook/internal/repo"
	"github.com/mkrasnov/contactbook/internal/search"
	"github.com/mkrasnov/contactbook/internal/service"
	"github.com/mkrasnov/contactbook/internal/storage"
	"github.com/mkrasnov/contactbook/internal/tokens"
)

const version = "1.0.0"

func main() {
	ctx := context.Background()

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	database, err := db.Open(ctx, configuration.DATABASE_URL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	userCache, err := cache.NewRedis(
		ctx,
		configuration.REDIS_HOST,
		configuration.REDIS_PORT,
		configuration.REDIS_PASSWORD,
		time.Duration(configuration.REDIS_USER_CACHE_EXPIRE)*time.Second,
	)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}

	avatarStore, err := storage.NewS3Store(ctx, storage.S3Options{
		Endpoint:  configuration.S3_ENDPOINT,
		Region:    configuration.S3_REGION,
		Bucket:    configuration.S3_BUCKET,
		AccessKey: configuration.S3_ACCESS_KEY,
		SecretKey: configuration.S3_SECRET_KEY,
		PublicURL: configuration.S3_PUBLIC_URL,
	})
	if err != nil {
		log.Fatalf("s3 init error: %v", err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer, err = mykafka.NewProducer(
			[]string{configuration.KAFKA_ADDRESS},
			[]string{"user_events"},
		)
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
	}

	contactSearch := &search.Contacts{Index: search.DefaultIndex}
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		contactSearch.ES = esClient
	}

	tokenManager := &tokens.Manager{
		Secret:     []byte(configuration.JWT_SECRET),
		AccessTTL:  time.Duration(configuration.JWT_EXPIRATION_SECONDS) * time.Second,
		RefreshTTL: time.Duration(configuration.JWT_REFRESH_EXPIRATION_SECONDS) * time.Second,
	}

	userRepo := &repo.UserRepo{DB: database}
	contactRepo := &repo.ContactRepo{DB: database}

	authSvc := &service.AuthService{
		Users:    userRepo,
		Cache:    userCache,
		Tokens:   tokenManager,
		Producer: producer,
	}
	userSvc := &service.UserService{
		Users:    userRepo,
		Cache:    userCache,
		Avatars:  avatarStore,
		Producer: producer,
	}
	contactSvc := &service.ContactService{
		Contacts: contactRepo,
		Search:   contactSearch,
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), echomw.CORS())

	banned := appmw.NewBanList(configuration.BANNED_IPS, configuration.BANNED_USER_AGENTS)
	e.Use(banned.Middleware())

	if configuration.RATE_LIMIT > 0 {
		e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(configuration.RATE_LIMIT))))
	}

	e.Use(appmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler:    &httpserver.AuthHandler{Svc: authSvc},
		ContactHandler: &httpserver.ContactHandler{Svc: contactSvc},
		UserHandler:    &httpserver.UserHandler{Svc: userSvc},
		UtilsHandler:   &httpserver.UtilsHandler{DB: database, Version: version},
		AuthMW:         &authmw.Middleware{Auth: authSvc},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := userCache.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
