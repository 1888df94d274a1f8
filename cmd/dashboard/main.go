package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/product_dashboard/internal/catalog"
	dashcfg "github.com/Skotchmaster/product_dashboard/internal/config"
	"github.com/Skotchmaster/product_dashboard/internal/httpserver"
	"github.com/Skotchmaster/product_dashboard/internal/search"
	"github.com/Skotchmaster/product_dashboard/internal/service"
	"github.com/Skotchmaster/product_dashboard/internal/session"
	pkgconfig "github.com/Skotchmaster/product_dashboard/pkg/config"
	"github.com/Skotchmaster/product_dashboard/pkg/events"
	"github.com/Skotchmaster/product_dashboard/pkg/logging"
	authmw "github.com/Skotchmaster/product_dashboard/pkg/middleware/auth"
	"github.com/Skotchmaster/product_dashboard/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/product_dashboard/pkg/middleware/logging"
)

func main() {
	pkgconfig.LoadDotEnv()
	cfg := dashcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	baseCtx := logging.IntoContext(context.Background(), logger)

	ctx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
	backend, err := openStorage(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("storage open: %v", err)
	}

	store, err := catalog.Open(baseCtx, backend.Slots,
		catalog.WithKey(cfg.StorageKey),
		catalog.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("catalog open: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewKafkaProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		publisher = producer
	}

	var searcher search.Searcher = search.NewLocalSearcher(store)
	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
		es, err := search.NewElasticSearcher(ctx, search.ElasticConfig{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		cancel()
		if err != nil {
			logger.Warn("es_unavailable", "error", err, "fallback", "local")
		} else {
			searcher = es
		}
	}

	var verifier service.CodeVerifier = service.MockVerifier{}
	if cfg.OTPMode == dashcfg.OTPModeStrict {
		verifier = service.IssuedCodeVerifier{}
	}

	catalogSvc := &service.CatalogService{Store: store, Events: publisher, Search: searcher}
	sessionSvc := &service.SessionService{Verifier: verifier, Events: publisher}
	sessions := authmw.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.CSRFSecure, string(session.StepLogin))

	ctx, cancel = context.WithTimeout(baseCtx, 10*time.Second)
	if err := catalogSvc.Reindex(ctx); err != nil {
		logger.Warn("search_sync_error", "error", err)
	}
	cancel()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		SessionHandler: &httpserver.SessionHTTP{Svc: sessionSvc, Sessions: sessions},
		ProductHandler: &httpserver.ProductHTTP{Svc: catalogSvc, Sessions: sessions},
		Sessions:       sessions,
		CSRF:           csrf.Config{Secure: cfg.CSRFSecure},
		Ready:          backend.Ready,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("dashboard listening", "addr", srv.Addr, "storage", cfg.Storage, "otp_mode", cfg.OTPMode, "catalog_source", store.Source())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if err := publisher.Close(); err != nil {
		logger.Warn("kafka_close_error", "error", err)
	}
	if err := backend.Close(); err != nil {
		logger.Warn("storage_close_error", "error", err)
	}

	logger.Info("dashboard stopped")
}
