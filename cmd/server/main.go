package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/social-feed/internal/config"
	"github.com/iliyamo/social-feed/internal/database"
	"github.com/iliyamo/social-feed/internal/handler"
	"github.com/iliyamo/social-feed/internal/logging"
	"github.com/iliyamo/social-feed/internal/middleware"
	"github.com/iliyamo/social-feed/internal/queue"
	"github.com/iliyamo/social-feed/internal/repository"
	"github.com/iliyamo/social-feed/internal/router"
	"github.com/iliyamo/social-feed/internal/service"
	"github.com/iliyamo/social-feed/internal/utils"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("database open failed")
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(context.Background(), db); err != nil {
			log.WithError(err).Fatal("migrations failed")
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unreachable; rate limiting and feed cache disabled")
	} else {
		defer rdb.Close()
	}

	issuer, err := utils.NewTokenIssuer(cfg.AccessSecret, cfg.Algorithm, cfg.AccessTTL)
	if err != nil {
		log.WithError(err).Fatal("token issuer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	qcfg := config.LoadQueueConfig()
	publisher := queue.NewPublisher(qcfg, log)
	if qcfg.Enabled && qcfg.ConsumerEnabled {
		go func() {
			if err := queue.StartNotificationConsumer(ctx, qcfg, log); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("notification consumer stopped")
			}
		}()
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	posts := repository.NewPostRepo(db)
	comments := repository.NewCommentRepo(db)
	notifications := repository.NewNotificationRepo(db)

	// Services
	authSvc := service.NewAuthService(cfg, users, tokens, issuer, log)
	userSvc := service.NewUserService(users, tokens, cfg.BcryptCost, log)
	postSvc := service.NewPostService(posts, log)
	notifySvc := service.NewNotificationService(notifications, publisher, log)
	commentSvc := service.NewCommentService(comments, postSvc, notifySvc, log)

	metrics := middleware.NewMetrics()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.Validator{}
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(metrics.Middleware())

	router.RegisterRoutes(e, db, metrics)
	router.RegisterAPI(e, router.Guards{
		Auth:      middleware.JWTAuth(authSvc, log),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:     middleware.NewResponseCache(config.LoadCacheConfig(), rdb, metrics, log),
	}, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, log),
		Users:         handler.NewUserHandler(userSvc, log),
		Posts:         handler.NewPostHandler(postSvc, log),
		Comments:      handler.NewCommentHandler(commentSvc, log),
		Notifications: handler.NewNotificationHandler(notifySvc, log),
	})

	addr := ":" + cfg.Port
	go func() {
		log.WithField("addr", addr).WithField("env", cfg.Env).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
