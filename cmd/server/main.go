package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/erp-avicola/internal/config"
	"github.com/mamadbah2/erp-avicola/internal/querycache"
	"github.com/mamadbah2/erp-avicola/internal/repository/mongodb"
	"github.com/mamadbah2/erp-avicola/internal/repository/sheets"
	supabaserepo "github.com/mamadbah2/erp-avicola/internal/repository/supabase"
	"github.com/mamadbah2/erp-avicola/internal/scheduler"
	"github.com/mamadbah2/erp-avicola/internal/server/handlers"
	"github.com/mamadbah2/erp-avicola/internal/server/router"
	"github.com/mamadbah2/erp-avicola/internal/service/accounting"
	commandsvc "github.com/mamadbah2/erp-avicola/internal/service/commands"
	"github.com/mamadbah2/erp-avicola/internal/service/dashboard"
	"github.com/mamadbah2/erp-avicola/internal/service/flocks"
	"github.com/mamadbah2/erp-avicola/internal/service/inventory"
	"github.com/mamadbah2/erp-avicola/internal/service/modules"
	reportingsvc "github.com/mamadbah2/erp-avicola/internal/service/reporting"
	"github.com/mamadbah2/erp-avicola/internal/service/session"
	"github.com/mamadbah2/erp-avicola/internal/service/shell"
	whatsappsvc "github.com/mamadbah2/erp-avicola/internal/service/whatsapp"
	"github.com/mamadbah2/erp-avicola/pkg/clients/supabase"
	whatsappclient "github.com/mamadbah2/erp-avicola/pkg/clients/whatsapp"
	"github.com/mamadbah2/erp-avicola/pkg/logger"
)

const moduleFetchTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Reporting.Timezone), zap.Error(err))
	}

	rest, auth := supabase.NewClients(cfg.Supabase, supabase.NewFileStorage(cfg.Supabase.SessionFile))
	repo := supabaserepo.NewRepository(rest, baseLogger.Named("repo.supabase"))

	var backend querycache.Backend = querycache.NewMemoryBackend()
	if cfg.Cache.RedisAddr != "" {
		redisBackend, err := querycache.NewRedisBackend(context.Background(), cfg.Cache)
		if err != nil {
			baseLogger.Fatal("failed to init redis cache", zap.Error(err))
		}
		defer func() { _ = redisBackend.Close() }()
		backend = redisBackend
		baseLogger.Info("query cache backed by redis", zap.String("addr", cfg.Cache.RedisAddr))
	}
	cache := querycache.New(backend, cfg.Cache.StaleTime, baseLogger.Named("querycache"))

	sessionStore := session.NewStore(auth, repo, baseLogger.Named("svc.session"))
	moduleStore := modules.NewStore(repo, baseLogger.Named("svc.modules"))
	dashboardSvc := dashboard.NewService(repo, cache, baseLogger.Named("svc.dashboard"))
	flockSvc := flocks.NewService(repo, cache, baseLogger.Named("svc.flocks"))
	inventorySvc := inventory.NewService(repo, cache, baseLogger.Named("svc.inventory"))
	accountingSvc := accounting.NewService(repo, cache, baseLogger.Named("svc.accounting"))
	shellSvc := shell.New(moduleStore, sessionStore)

	unsubscribe := followSession(sessionStore, moduleStore, cache, baseLogger.Named("svc.session"))
	defer unsubscribe()

	if err := sessionStore.Initialize(context.Background()); err != nil {
		baseLogger.Warn("session restore failed, starting signed out", zap.Error(err))
	}
	defer sessionStore.Close()

	sinks := reportingsvc.Sinks{}
	var reportHandler *handlers.ReportHandler

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB, baseLogger.Named("repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		sinks.Store = mongoRepo
		reportHandler = handlers.NewReportHandler(mongoRepo, baseLogger.Named("handlers.reports"))
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, loc, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sinks.Exporter = sheetsRepo
	}

	var webhookHandler *handlers.WebhookHandler
	if cfg.WhatsApp.Enabled() {
		dispatcher := commandsvc.NewService(dashboardSvc, inventorySvc, flockSvc, sessionStore, baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, dispatcher, baseLogger.Named("svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		if cfg.WhatsApp.AlertRecipient != "" {
			sinks.Notifier = messagingSvc
		}
	} else {
		baseLogger.Warn("whatsapp credentials missing, webhook and notifications disabled")
	}

	reportingSvc := reportingsvc.NewService(dashboardSvc, sessionStore, sinks, loc, baseLogger.Named("svc.reporting"))

	sched := scheduler.NewScheduler(cfg.Reporting, loc, reportingSvc, auth, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(router.Handlers{
		Auth:    handlers.NewAuthHandler(sessionStore, baseLogger.Named("handlers.auth")),
		Modules: handlers.NewModuleHandler(moduleStore, baseLogger.Named("handlers.modules")),
		Shell:   handlers.NewShellHandler(shellSvc, baseLogger.Named("handlers.shell")),
		Views:   handlers.NewViewHandler(dashboardSvc, inventorySvc, accountingSvc, baseLogger.Named("handlers.views")),
		Flocks:  handlers.NewFlockHandler(flockSvc, baseLogger.Named("handlers.flocks")),
		Webhook: webhookHandler,
		Reports: reportHandler,
	}, router.Gates{Sessions: sessionStore, Modules: moduleStore}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

type sessionEvents interface {
	Subscribe(listener session.Listener) func()
}

type moduleFetcher interface {
	FetchModules(ctx context.Context) error
}

type cachePurger interface {
	Purge(ctx context.Context) error
}

// followSession reloads the module set whenever a user signs in and drops
// every cached query once the session ends or passes to another user.
func followSession(sessions sessionEvents, moduleStore moduleFetcher, cache cachePurger, log *zap.Logger) func() {
	return sessions.Subscribe(func(prev, next session.Snapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), moduleFetchTimeout)
		defer cancel()

		switched := prev.User != nil && (next.User == nil || prev.User.ID != next.User.ID)
		if switched || (next.Status == session.StatusAnonymous && prev.Status != session.StatusAnonymous) {
			if err := cache.Purge(ctx); err != nil {
				log.Warn("query cache purge failed", zap.Error(err))
			}
		}

		if next.Authenticated() && (!prev.Authenticated() || switched) {
			if err := moduleStore.FetchModules(ctx); err != nil {
				log.Warn("module fetch after sign in failed", zap.Error(err))
			}
		}
	})
}
