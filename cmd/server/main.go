package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/romeoalpha/admin/internal/backend"
	"github.com/romeoalpha/admin/internal/config"
	"github.com/romeoalpha/admin/internal/dashboard"
	"github.com/romeoalpha/admin/internal/handler"
	"github.com/romeoalpha/admin/internal/localstore"
	"github.com/romeoalpha/admin/internal/logging"
	"github.com/romeoalpha/admin/internal/repository"
	"github.com/romeoalpha/admin/internal/session"
	"github.com/romeoalpha/admin/internal/storage"
)

// gateways are the remote collections plus the health probe of the
// configured driver.
type gateways struct {
	messages    dashboard.MessageGateway
	marketplace dashboard.MarketplaceGateway
	ads         dashboard.AdGateway
	db          repository.DB
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := localstore.Open(cfg.BadgerPath)
	if err != nil {
		logging.Fatal("failed to open local store", "path", cfg.BadgerPath, "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close local store", "error", err)
		}
	}()
	faqs := localstore.NewFaqStore(db)
	proposals := localstore.NewProposalStore(db)

	router := session.NewRouter(session.LoginView)
	guard := session.NewGuard(localstore.NewSessionStore(db), router, slog.Default())

	var client *backend.Client
	if cfg.BackendURL != "" {
		client = backend.NewClient(cfg.BackendURL, cfg.BackendAPIKey, guard, cfg.RequestTimeout)
	}

	gw, err := newGateways(ctx, cfg, client)
	if err != nil {
		logging.Fatal("failed to connect to backend", "driver", cfg.BackendDriver, "error", err)
	}
	defer gw.close()

	store, err := newStorage(ctx, cfg, client)
	if err != nil {
		logging.Fatal("failed to configure image storage", "driver", cfg.StorageDriver, "error", err)
	}
	uploader := storage.NewUploader(store, cfg.MaxImageBytes, slog.Default())

	dash := dashboard.New(dashboard.Deps{
		Messages:    gw.messages,
		Marketplace: gw.marketplace,
		Ads:         gw.ads,
		Faqs:        faqs,
		Proposals:   proposals,
		Uploader:    uploader,
	}, guard,
		dashboard.WithRequestTimeout(cfg.RequestTimeout),
		dashboard.WithLogger(slog.Default()),
		dashboard.WithStateListener(func(s dashboard.State) {
			slog.Debug("dashboard state changed", "tab", s.ActiveTab.String(), "view", router.Current())
		}),
	)

	h := handler.New(gw.db, cfg.FrontendURL)
	dashHandler := handler.NewDashboardHandler(dash, guard, cfg.MaxImageBytes)
	partnershipHandler := handler.NewPartnershipHandler(proposals)
	proposalLimiter := handler.NewRateLimiter(ctx, cfg.ProposalRatePerMinute, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	dashHandler.Register(mux)
	mux.Handle("POST /api/partnership", proposalLimiter.Middleware(http.HandlerFunc(partnershipHandler.Submit)))

	// ローカル保存時のみアップロード画像を配信する
	if cfg.StorageDriver == config.StorageLocal {
		prefix := strings.TrimSuffix(cfg.UploadURLPrefix, "/")
		mux.Handle("GET "+prefix+"/", http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadDir))))
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler.RequestLogger(slog.Default())(h.CORS(handler.SecurityHeaders(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "backend", cfg.BackendDriver, "storage", cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newGateways(ctx context.Context, cfg *config.Config, client *backend.Client) (*gateways, error) {
	switch cfg.BackendDriver {
	case config.DriverPostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &gateways{
			messages:    repository.NewPgMessageRepository(pool),
			marketplace: repository.NewPgMarketplaceRepository(pool),
			ads:         repository.NewPgAdRepository(pool),
			db:          pool,
			close:       pool.Close,
		}, nil
	default:
		return &gateways{
			messages:    client,
			marketplace: client,
			ads:         client,
			db:          client,
			close:       func() {},
		}, nil
	}
}

func newStorage(ctx context.Context, cfg *config.Config, client *backend.Client) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageS3:
		return storage.NewS3Storage(ctx, storage.S3Options{
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.StorageBucket,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
	case config.StorageLocal:
		return storage.NewLocalStorage(cfg.UploadDir, cfg.UploadURLPrefix), nil
	default:
		return storage.NewBackendStorage(client, cfg.StorageBucket), nil
	}
}
