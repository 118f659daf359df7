// Package bridge implements app.Runner for the bridge server process.
package bridge

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainsafe/solana-bridge-middleware/internal/metrics"
	"github.com/chainsafe/solana-bridge-middleware/pkg/app/httpserver"
	"github.com/chainsafe/solana-bridge-middleware/pkg/auth"
	bridgecore "github.com/chainsafe/solana-bridge-middleware/pkg/bridge"
	"github.com/chainsafe/solana-bridge-middleware/pkg/bridge/service"
	"github.com/chainsafe/solana-bridge-middleware/pkg/bridgestore"
	"github.com/chainsafe/solana-bridge-middleware/pkg/config"
	"github.com/chainsafe/solana-bridge-middleware/pkg/derive"
	"github.com/chainsafe/solana-bridge-middleware/pkg/ledger"
	"github.com/chainsafe/solana-bridge-middleware/pkg/pgutil"
)

const (
	defaultHTTPReadTimeout  = 15 * time.Second
	defaultHTTPWriteTimeout = 15 * time.Second
	defaultHTTPIdleTimeout  = 60 * time.Second
)

// Server holds cfg to init the bridge server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new bridge server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("bridge server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	key, err := instanceKey(&cfg.Bridge)
	if err != nil {
		return fmt.Errorf("invalid bridge instance config: %w", err)
	}

	logger.Info("Starting bridge server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Stringer("owner", key.Owner),
		zap.Stringer("token", key.Token),
		zap.Uint64("version", key.Version),
		zap.Stringer("home_chain", key.HomeChain),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()

	engine := bridgecore.NewEngine(
		bridgestore.NewStore(db),
		ledger.NewLedger(db),
		pgutil.NewTxRunner(db),
		logger,
		derive.Wallet,
	)

	svc := service.NewLog(service.NewService(engine, key, logger), logger)

	router := s.setupRouter(svc, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  defaultHTTPReadTimeout,
		WriteTimeout: defaultHTTPWriteTimeout,
		IdleTimeout:  defaultHTTPIdleTimeout,
	}

	return httpserver.ServeAndWait(ctx, logger, srv, cfg.Shutdown.Timeout)
}

func (s *Server) setupRouter(svc service.Service, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Bridge.RequestTimeout))
	r.Use(requestDuration)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
		logger.Info("Metrics enabled", zap.Int("port", s.cfg.Monitoring.MetricsPort))
	}

	// Bridge routes go behind JWT validation when configured; health and
	// metrics stay public.
	r.Group(func(gr chi.Router) {
		if s.cfg.JWKS.URL != "" {
			validator := auth.NewJWTValidator(s.cfg.JWKS.URL, s.cfg.JWKS.Issuer)
			gr.Use(auth.Middleware(validator, logger))
			logger.Info("JWT validation enabled", zap.String("jwks_url", s.cfg.JWKS.URL))
		}
		service.RegisterRoutes(gr, svc, logger)
	})

	return r
}

// requestDuration records handling time per chi route pattern.
func requestDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func instanceKey(cfg *config.BridgeConfig) (bridgecore.InstanceKey, error) {
	var key bridgecore.InstanceKey
	if err := key.Owner.UnmarshalText([]byte(cfg.Owner)); err != nil {
		return key, fmt.Errorf("owner: %w", err)
	}
	if err := key.Token.UnmarshalText([]byte(cfg.Token)); err != nil {
		return key, fmt.Errorf("token: %w", err)
	}
	key.Version = cfg.Version
	key.HomeChain = bridgecore.ChainID(cfg.HomeChain)
	return key, nil
}
