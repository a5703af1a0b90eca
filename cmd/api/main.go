package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"sitecms/internal/config"
	hhttp "sitecms/internal/handler/http"
	"sitecms/internal/handler/http/admin"
	"sitecms/internal/handler/http/middleware"
	"sitecms/internal/handler/http/public"
	"sitecms/internal/handler/http/requestid"
	pgRepo "sitecms/internal/infra/adapter/persistence/postgres"
	"sitecms/internal/infra/db"
	"sitecms/internal/infra/objectstore"
	"sitecms/internal/infra/textgen"
	"sitecms/internal/observability/logging"
	"sitecms/internal/observability/tracing"
	"sitecms/internal/resilience/circuitbreaker"
	"sitecms/internal/service/auth"
	adminuc "sitecms/internal/usecase/admin"
	"sitecms/internal/usecase/content"
	"sitecms/internal/usecase/draft"
	"sitecms/internal/usecase/media"
	env "sitecms/pkg/config"
)

const serviceName = "sitecms"

// multipart framing and form fields on top of the image itself
const uploadOverhead = 1 << 20

func main() {
	configPath := flag.String("config", "", "YAML config file (default $CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format == "text")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := tracing.InitProvider(ctx, serviceName, cfg.TraceSampleRatio)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	database, err := initDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	handler, err := setupServer(ctx, cfg, logger, database)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("version", version()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}

func initDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	database, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return database, nil
}

func version() string {
	return env.GetEnvString("VERSION", "dev")
}

// setupServer builds every service and returns the fully wrapped handler.
func setupServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, database *sql.DB) (http.Handler, error) {
	dbBreaker := circuitbreaker.NewDBCircuitBreaker(database)
	contentSvc := content.NewService(
		pgRepo.NewNewsRepo(dbBreaker),
		pgRepo.NewPartnershipRepo(dbBreaker),
		cfg.CacheTTL,
	)

	mux := http.NewServeMux()

	store, err := newObjectStore(ctx, cfg, mux)
	if err != nil {
		return nil, err
	}
	guarded := objectstore.NewGuarded(store, circuitbreaker.ObjectStoreConfig())
	uploader := media.NewUploader(guarded)
	if cfg.MaxUploadBytes > 0 {
		uploader.MaxSize = cfg.MaxUploadBytes
	}

	gen := textgen.New(textgen.Config{
		Provider:  cfg.AI.Provider,
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
		Timeout:   cfg.AI.Timeout,
	})
	_, aiDisabled := gen.(*textgen.Unconfigured)
	if aiDisabled {
		logger.Warn("AI drafting disabled", slog.String("provider", cfg.AI.Provider))
	}

	perMinute := cfg.Auth.SignInPerMinute
	authSvc := auth.NewService(auth.NewAccountProvider(cfg.Auth.Editors), auth.Config{
		Secret:      []byte(cfg.Auth.Secret),
		TTL:         cfg.Auth.SessionTTL,
		SignInRate:  rate.Limit(float64(perMinute) / 60),
		SignInBurst: perMinute,
	})

	api := &admin.API{
		Auth:     authSvc,
		Registry: adminuc.NewRegistry(),
		Deps: adminuc.Deps{
			Content:  contentSvc,
			Uploader: uploader,
			Drafts:   draft.NewGenerator(gen),
			Buckets: adminuc.Buckets{
				Covers: cfg.Storage.CoversBucket,
				Logos:  cfg.Storage.LogosBucket,
			},
			SuccessDelay: cfg.SuccessDelay,
			Logger:       logger,
		},
		MaxUploadMemory: admin.DefaultMaxUploadMemory,
		Logger:          logger,
	}
	api.Register(mux)

	limiter := hhttp.NewRateLimiter(cfg.RateLimit.PublicPerMinute, cfg.RateLimit.PublicBurst)
	public.Register(mux, contentSvc, limiter.Limit)

	breakers := []hhttp.Breaker{dbBreaker, guarded.Breaker()}
	if b, ok := gen.(interface {
		Breaker() *circuitbreaker.CircuitBreaker
	}); ok {
		breakers = append(breakers, b.Breaker())
	}
	mux.Handle("GET /health", &hhttp.HealthHandler{
		DB:           database,
		Breakers:     breakers,
		Version:      version(),
		AIConfigured: !aiDisabled,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	corsCfg := middleware.DefaultCORSConfig(cfg.CORSOrigins)
	corsCfg.Logger = logger
	if len(cfg.CORSOrigins) == 0 {
		logger.Info("CORS disabled, no allowed origins configured")
	} else {
		logger.Info("CORS enabled", slog.Any("allowed_origins", cfg.CORSOrigins))
	}

	maxUpload := uploader.MaxSize
	return applyMiddleware(logger, mux, cfg.Server.RequestTimeout, maxUpload+uploadOverhead, corsCfg), nil
}

// newObjectStore builds the configured backend. The memory backend also
// mounts a route serving the stored images back.
func newObjectStore(ctx context.Context, cfg *config.Config, mux *http.ServeMux) (objectstore.Store, error) {
	st := cfg.Storage
	if st.Backend == config.StorageMemory {
		base := st.PublicBaseURL
		if base == "" {
			base = "http://localhost" + cfg.Addr() + "/media"
		}
		mem := objectstore.NewMemoryStore(base)
		mux.Handle("GET /media/{bucket}/{name...}", hhttp.MediaHandler{Store: mem})
		slog.Warn("using in-memory object store; uploads are lost on restart")
		return mem, nil
	}

	s3, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
		Region:          st.Region,
		Bucket:          st.Bucket,
		AccessKeyID:     st.AccessKeyID,
		SecretAccessKey: st.SecretAccessKey,
		Endpoint:        st.Endpoint,
		UsePathStyle:    st.UsePathStyle,
		PublicBaseURL:   st.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store: %w", err)
	}
	return s3, nil
}

// applyMiddleware wraps the mux, outermost first:
// Recover → Request ID → Logging → Timeout → CORS → JSON/body checks → Tracing → Metrics.
// Tracing and Metrics stay next to the mux so they can read r.Pattern.
func applyMiddleware(logger *slog.Logger, mux http.Handler, timeout time.Duration, maxBody int64, corsCfg middleware.CORSConfig) http.Handler {
	return hhttp.Chain(mux,
		hhttp.Recover(logger),
		requestid.Middleware,
		hhttp.Logging(logger),
		hhttp.Timeout(timeout),
		middleware.CORS(corsCfg),
		hhttp.RequireJSON,
		hhttp.LimitRequestBody(maxBody),
		tracing.Middleware,
		hhttp.MetricsMiddleware,
	)
}
