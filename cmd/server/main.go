package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vault/internal/application"
	applicationadapters "vault/internal/application/adapters"
	applicationhandler "vault/internal/application/handler"
	applicationservice "vault/internal/application/service"
	"vault/internal/audit"
	"vault/internal/document"
	documentadapters "vault/internal/document/adapters"
	documenthandler "vault/internal/document/handler"
	documentservice "vault/internal/document/service"
	jwttoken "vault/internal/jwt_token"
	"vault/internal/ledger"
	"vault/internal/platform/config"
	"vault/internal/platform/httpserver"
	"vault/internal/platform/logger"
	"vault/internal/platform/metrics"
	"vault/internal/platform/postgres"
	platformredis "vault/internal/platform/redis"
	"vault/internal/share"
	shareadapters "vault/internal/share/adapters"
	sharehandler "vault/internal/share/handler"
	shareservice "vault/internal/share/service"
	httptransport "vault/internal/transport/http"
)

const tokenTTL = time.Hour

// main wires the backends, services and HTTP surface. Business logic lives in
// the internal service packages; everything here is construction order.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when configured, in-memory otherwise.
	var (
		db               *sql.DB
		applicationStore application.Store
		documentStore    document.Store
		fileStore        document.FileStore
		ledgerStore      ledger.Store
		auditStore       audit.Store
		shareStore       share.Store
		txRunner         documentservice.TxRunner
	)
	if cfg.PostgresURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("postgres migration failed", "error", err)
			os.Exit(1)
		}
		applicationStore = application.NewPostgresStore(db)
		documentStore = document.NewPostgresStore(db)
		fileStore = document.NewPostgresFileStore(db)
		ledgerStore = ledger.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		shareStore = share.NewPostgresStore(db)
		txRunner = postgres.NewTxRunner(db)
	} else {
		log.Warn("POSTGRES_URL not set, using in-memory stores")
		applicationStore = application.NewInMemoryStore()
		documentStore = document.NewInMemoryStore()
		fileStore = document.NewInMemoryFileStore()
		ledgerStore = ledger.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		shareStore = share.NewInMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := audit.NewPublisher(cfg.KafkaBrokers, cfg.AuditTopic, log)
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		defer publisher.Close()
	}

	auditSvc := audit.NewService(auditStore, publisher, m)
	ledgerSvc := ledger.NewService(ledgerStore, ledger.NewHashChain(), cfg.LedgerTimeout, m)

	documentSvc := documentservice.NewService(
		documentStore,
		fileStore,
		ledgerSvc,
		documentadapters.NewApplicationGate(applicationStore),
		auditSvc,
		txRunner,
		m,
	)
	applicationSvc := applicationservice.NewService(
		applicationStore,
		applicationadapters.NewDocumentIssuer(documentSvc),
	)
	shareSvc := shareservice.NewService(
		shareStore,
		shareadapters.NewDocumentDirectory(documentStore),
		fileStore,
		auditSvc,
		share.NewRevocationCache(redisClient, log),
		m,
	)

	tokens := jwttoken.New(cfg.JWTSigningKey, tokenTTL)
	router := httptransport.NewRouter(
		applicationhandler.New(applicationSvc, log),
		documenthandler.New(documentSvc, auditSvc, log),
		sharehandler.New(shareSvc, documentSvc, log),
		tokens,
		func(ctx context.Context) error {
			if db != nil {
				if err := db.PingContext(ctx); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(ctx)
			}
			return nil
		},
		log,
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting vault server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
