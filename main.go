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

	"github.com/McTechie/tubecafe-backend/cache"
	"github.com/McTechie/tubecafe-backend/config"
	"github.com/McTechie/tubecafe-backend/controllers"
	"github.com/McTechie/tubecafe-backend/database"
	"github.com/McTechie/tubecafe-backend/docs"
	"github.com/McTechie/tubecafe-backend/logger"
	"github.com/McTechie/tubecafe-backend/mailer"
	"github.com/McTechie/tubecafe-backend/media"
	"github.com/McTechie/tubecafe-backend/routes"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.WithField(logger.SourceKey, "server").WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if _, err := logger.Init(cfg.Log); err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Disconnect(shutdownCtx)
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	//seeding admin user
	if err := utils.SeedAdminUser(ctx, db.OpenCollection(database.UsersCollection), cfg.Admin); err != nil {
		return err
	}

	actionLogs := database.NewActionLogRepository(db)
	if cfg.Log.ToDB {
		hook := logger.EnableActionLogs(actionLogs, cfg.Log.DBLevel)
		defer hook.Close()
	}

	store, err := media.NewStore(ctx, cfg.Media)
	if err != nil {
		return err
	}

	likeCounts, closeCache, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeCache()

	users := database.NewUserRepository(db)
	app := &controllers.App{
		Users:         users,
		Videos:        database.NewVideoRepository(db),
		Playlists:     database.NewPlaylistRepository(db),
		Comments:      database.NewCommentRepository(db),
		Likes:         database.NewLikeRepository(db),
		Subscriptions: database.NewSubscriptionRepository(db),
		ActionLogs:    actionLogs,
		Media: media.NewService(store, media.FFProbe{}, media.ServiceOptions{
			TempDir:    cfg.Media.TempDir,
			MaxVideoMB: cfg.Media.MaxVideoMB,
			MaxImageMB: cfg.Media.MaxImageMB,
		}),
		LikeCounts: likeCounts,
		Mailer:     mailer.New(cfg.Mail),
	}
	app.Configure(cfg)

	router, public := routes.New(app, routes.Options{
		Prefix:     cfg.APIPrefix,
		Origins:    cfg.Origins,
		Proxies:    cfg.TrustedProxies,
		Limiter:    cfg.Limiter,
		MaxVideoMB: cfg.Media.MaxVideoMB,
		MaxImageMB: cfg.Media.MaxImageMB,
	})
	docs.Register(router, docs.Options{
		Title:   "TubeCafe API",
		Version: "1.0.0",
		Prefix:  cfg.APIPrefix,
		Public:  public,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(log.Fields{logger.SourceKey: "server", "port": cfg.Port}).Info("Starting application")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.WithField(logger.SourceKey, "server").Info("Application shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
