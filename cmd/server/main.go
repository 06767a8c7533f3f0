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

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"agrilink/internal/audit"
	"agrilink/internal/blob"
	"agrilink/internal/options"
	"agrilink/internal/phone"
	"agrilink/internal/platform/config"
	"agrilink/internal/platform/httpserver"
	"agrilink/internal/platform/logger"
	platformmetrics "agrilink/internal/platform/metrics"
	"agrilink/internal/platform/redis"
	"agrilink/internal/review"
	transport "agrilink/internal/transport/http"
	verificationmetrics "agrilink/internal/verification/metrics"
	"agrilink/internal/verification/progress"
	"agrilink/internal/verification/requirements"
	verification "agrilink/internal/verification/service"
	documentstore "agrilink/internal/verification/store/document"
	requeststore "agrilink/internal/verification/store/request"
	subjectstore "agrilink/internal/verification/store/subject"
	"agrilink/pkg/platform/middleware/auth"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New("agrilink-verification", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when a DSN is configured, memory otherwise.
	var (
		stores verification.Stores
		txRun  verification.Tx
		audits audit.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		stores = verification.Stores{
			Subjects:  subjectstore.NewPostgres(db),
			Documents: documentstore.NewPostgres(db),
			Requests:  requeststore.NewPostgres(db),
		}
		txRun = newVerificationPostgresTx(db, stores)
		audits = audit.NewPostgresStore(db)
	} else {
		log.Warn("no POSTGRES_DSN configured, using in-memory stores")
		stores = verification.Stores{
			Subjects:  subjectstore.NewInMemoryStore(),
			Documents: documentstore.NewInMemoryStore(),
			Requests:  requeststore.NewInMemoryStore(),
		}
		txRun = verification.NewShardedTx(stores)
		audits = audit.NewInMemoryStore()
	}

	// Progress cache: redis when configured, process-local otherwise.
	var cache progress.Cache = progress.NewInMemoryCache()
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = progress.NewRedisCache(redisClient)
	}

	blobs, err := blob.NewLocalFS(cfg.StoragePath)
	if err != nil {
		log.Error("init blob storage", "error", err)
		os.Exit(1)
	}

	var gateway phone.Gateway
	if cfg.SMSGatewayURL != "" {
		gateway = phone.NewHTTPGateway(cfg.SMSGatewayURL, cfg.SMSGatewayToken, cfg.UpstreamTimeout)
	} else {
		log.Warn("no SMS_GATEWAY_URL configured, using in-memory code gateway")
		gateway = phone.NewInMemoryGateway()
	}

	publisher := audit.NewPublisher(256, audit.WithLogger(log))
	worker := audit.NewWorker(audits, publisher.Inbox(), log)

	resolver := requirements.New(requirements.WithLogger(log))
	evaluator := progress.New(resolver, progress.WithCache(cache), progress.WithLogger(log))

	svc := verification.NewService(txRun, stores, blobs, gateway, resolver, evaluator,
		verification.Limits{
			MaxDocumentBytes:   cfg.MaxDocumentBytes,
			AllowedContentType: cfg.AllowedContentType,
			PhoneRegion:        cfg.PhoneRegion,
		},
		verification.WithLogger(log),
		verification.WithAuditPublisher(publisher),
		verification.WithMetrics(verificationmetrics.New()),
	)
	reviewSvc := review.NewService(stores.Subjects, stores.Documents, stores.Requests, svc,
		review.WithLogger(log))

	router := transport.NewRouter(transport.RouterConfig{
		Verification: svc,
		Review:       reviewSvc,
		Options:      options.NewService(cfg.DeliveryOptions, cfg.PaymentOptions),
		Validator:    auth.NewValidator(cfg.JWTSigningKey),
		AdminToken:   cfg.AdminToken,
		Logger:       log,
		Metrics:      platformmetrics.New(),
		DevRoutes:    cfg.PostgresDSN == "",
	})
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.Info("starting agrilink verification service", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("service exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
