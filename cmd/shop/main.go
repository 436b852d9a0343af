package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ctgpost/MarketingWebTools/internal/audit"
	"github.com/ctgpost/MarketingWebTools/internal/cache"
	"github.com/ctgpost/MarketingWebTools/internal/cart"
	"github.com/ctgpost/MarketingWebTools/internal/catalog"
	"github.com/ctgpost/MarketingWebTools/internal/gateway"
	h "github.com/ctgpost/MarketingWebTools/internal/http"
	"github.com/ctgpost/MarketingWebTools/internal/repository"
	"github.com/ctgpost/MarketingWebTools/internal/session"
)

type Config struct {
	HTTPPort          string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
	APIKey            string
	Model             string
	GenerationTimeout time.Duration
	BreakerFailures   uint32
	BreakerOpen       time.Duration
	AuditDelay        time.Duration
	MarkerDelay       time.Duration
	SessionIdleTTL    time.Duration
	SlotPolicy        string
	RedisAddr         string
	RedisPassword     string
	CatalogDBPath     string
	MigrationsPath    string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		APIKey:            getEnv("API_KEY", os.Getenv("GEMINI_API_KEY")),
		Model:             getEnv("GEMINI_MODEL", gateway.DefaultModel),
		GenerationTimeout: getDuration("GENERATION_TIMEOUT", gateway.DefaultTimeout),
		BreakerFailures:   getUint32("GENERATION_BREAKER_FAILURES", 0),
		BreakerOpen:       getDuration("GENERATION_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		AuditDelay:        getDuration("AUDIT_DELAY", audit.DefaultDelay),
		MarkerDelay:       getDuration("CART_MARKER_DELAY", cart.DefaultMarkerDelay),
		SessionIdleTTL:    getDuration("SESSION_IDLE_TTL", session.DefaultIdleTTL),
		SlotPolicy:        getEnv("SLOT_POLICY", "last-resolved"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		CatalogDBPath:     getEnv("CATALOG_DB_PATH", ""),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "internal/repository/migrations"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("2s") or plain seconds ("2").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getUint32(key string, defaultValue uint32) uint32 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return defaultValue
	}
	return uint32(n)
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := loadConfig()

	policy, err := session.ParseSlotPolicy(cfg.SlotPolicy)
	if err != nil {
		logger.Fatal("invalid slot policy", zap.Error(err))
	}

	ctx := context.Background()

	products, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	var generator gateway.Generator
	gemini, err := gateway.NewGeminiGenerator(ctx, cfg.APIKey)
	if err != nil {
		logger.Warn("text generation disabled, lab tools will return fallbacks", zap.Error(err))
	} else {
		generator = gemini
	}
	gw := gateway.New(generator, gateway.Config{
		Model:       cfg.Model,
		Timeout:     cfg.GenerationTimeout,
		MaxFailures: cfg.BreakerFailures,
		OpenTimeout: cfg.BreakerOpen,
	}, logger)

	var sessionCache cache.SessionCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		sessionCache = cache.NewRedisCache(client, cfg.SessionIdleTTL)
		logger.Info("session cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	manager := session.NewManager(session.Deps{
		Catalog:     products,
		Gateway:     gw,
		Auditor:     audit.NewAuditor(cfg.AuditDelay),
		Policy:      policy,
		MarkerDelay: cfg.MarkerDelay,
		Logger:      logger,
	}, sessionCache, session.ManagerConfig{IdleTTL: cfg.SessionIdleTTL})
	defer manager.Close()

	router := h.NewRouter(h.Handlers{
		Products: h.NewProductHandler(products, logger),
		Sessions: h.NewSessionHandler(manager, logger),
		Checkout: h.NewCheckoutHandler(logger),
		Lab:      h.NewLabHandler(logger),
	}, manager, cfg.RequestTimeout, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "shop"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("shop API starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("model", cfg.Model),
			zap.String("slot_policy", policy.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// loadCatalog reads the showroom from SQLite when a database is configured,
// otherwise it serves the built-in product list.
func loadCatalog(ctx context.Context, cfg *Config, logger *zap.Logger) (*catalog.Catalog, error) {
	if cfg.CatalogDBPath == "" {
		return catalog.New(catalog.DefaultProducts()), nil
	}

	repo, err := repository.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		return nil, err
	}

	c, err := catalog.Load(ctx, repo)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded from database",
		zap.String("path", cfg.CatalogDBPath),
		zap.Int("products", len(c.Products())))
	return c, nil
}
