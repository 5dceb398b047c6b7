// Command packet-server runs the bond packet service: case packet
// generation, e-signature dispatch, and webhook reconciliation.
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bondpacket/internal/catalog"
	awsclients "bondpacket/internal/common/aws"
	"bondpacket/internal/common/config"
	"bondpacket/internal/common/database"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/common/observability"
	"bondpacket/internal/dispatch"
	"bondpacket/internal/filing"
	"bondpacket/internal/notify"
	"bondpacket/internal/packet"
	"bondpacket/internal/packet/fill"
	"bondpacket/internal/packet/merge"
	"bondpacket/internal/pdf"
	"bondpacket/internal/server"
	"bondpacket/internal/signnow"
	"bondpacket/internal/tracker"
	"bondpacket/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting packet-server", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// Data stores.
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.WithError(err).Error("postgres init failed", nil)
		os.Exit(1)
	}
	defer pg.Close()

	if _, err := pg.Exec(ctx, tracker.Schema); err != nil {
		log.WithError(err).Error("tracker schema migration failed", nil)
		os.Exit(1)
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.WithError(err).Error("redis init failed", nil)
		os.Exit(1)
	}
	defer rdb.Close()

	var es *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled {
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			log.WithError(err).Warn("elasticsearch init failed, audit disabled", nil)
			es = nil
		}
	}

	// Pipeline.
	cat := catalog.Load(cfg.Templates.Dir)
	engine := pdf.New(log)
	generator := packet.NewGenerator(cat,
		fill.New(cat, engine, log),
		merge.New(cat, engine),
		cfg.Agency, obs, log)

	// Provider and stores.
	provider := signnow.NewClient(cfg.Provider, log)
	trackerStore := tracker.NewStore(pg, log)
	dispatcher := dispatch.New(provider, trackerStore, cfg.Provider, cfg.Notifications.Email.FromEmail, log)

	filer, err := filing.NewStore(ctx, cfg.Filing, log)
	if err != nil {
		log.WithError(err).Error("filing store init failed", nil)
		os.Exit(1)
	}

	// Notifications.
	var sesSvc notify.SESService
	var snsSvc notify.SNSService
	if cfg.Notifications.Email.Enabled {
		sesClient, err := awsclients.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			log.WithError(err).Error("ses init failed", nil)
			os.Exit(1)
		}
		sesSvc = sesClient
	}
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := awsclients.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			log.WithError(err).Error("sns init failed", nil)
			os.Exit(1)
		}
		snsSvc = snsClient
	}
	notifier := notify.New(cfg.Notifications, sesSvc, snsSvc, log)

	// Webhook reconciliation.
	var auditor webhook.Auditor
	if es != nil {
		auditor = es
	}
	reconciler := webhook.NewReconciler(trackerStore, provider, filer, notifier,
		rdb, auditor, cfg.Database.Elasticsearch, obs, log)
	webhookHandler := webhook.NewHandler(reconciler, cfg.Provider, log)

	if cfg.Provider.RegisterWebhook {
		if err := provider.RegisterAllWebhooks(ctx, cfg.App.Name, cfg.Provider.CallbackURL, log); err != nil {
			log.WithError(err).Warn("webhook self-registration failed", nil)
		}
	}

	// Expiry sweep.
	sweeper := tracker.NewSweeper(trackerStore, cfg.Tracker, log)
	go sweeper.Run(ctx)

	checks := map[string]server.HealthChecker{
		"postgres": pg.Ping,
		"redis":    rdb.Ping,
	}
	handler := server.NewHandler(generator, dispatcher, trackerStore, filer, checks, log)
	srv := server.New(cfg.Server, handler, webhookHandler, log)

	// pprof on the debug port, never on the public listener.
	go func() {
		addr := fmt.Sprintf("localhost:%d", cfg.Server.DebugPort)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.WithError(err).Warn("debug server stopped", nil)
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server failed", nil)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("server shutdown incomplete", nil)
		}
	}
}
