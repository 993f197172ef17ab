package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/gymstats/internal/config"
	"github.com/2beens/gymstats/internal/gymstats"
	"github.com/2beens/gymstats/internal/gymstats/analytics"
	gymstatsmcp "github.com/2beens/gymstats/internal/gymstats/mcp"
	"github.com/2beens/gymstats/internal/middleware"
	"github.com/2beens/gymstats/internal/telemetry/metrics"
	"github.com/2beens/gymstats/internal/telemetry/tracing"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

const mcpRateLimitKey = "gymstats-mcp"

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	backends    *gymstats.Backends
	analytics   *analytics.Service
	rateLimiter middleware.RequestRateLimiter // nil when redis is not configured

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	backends, err := gymstats.OpenBackends(ctx, gymstats.OpenBackendsParams{
		Config:           params.Config,
		PostgresPassword: params.PostgresPassword,
		RedisPassword:    params.RedisPassword,
		TracingEnabled:   params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("open backends: %w", err)
	}

	promRegistry := metrics.SetupPrometheus(backends.PoolCollector)
	metricsManager := metrics.NewManager("gymstats", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	analyticsService, err := gymstats.NewAnalyticsService(
		params.Config,
		backends.Store,
		backends.Cache,
		metricsManager,
	)
	if err != nil {
		_ = backends.Close()
		return nil, fmt.Errorf("new analytics service: %w", err)
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymstats-service")
	if err != nil {
		_ = backends.Close()
		return nil, err
	}

	s := &Server{
		config:      params.Config,
		backends:    backends,
		analytics:   analyticsService,
		versionInfo: params.VersionInfo,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if backends.Redis != nil {
		s.rateLimiter = redis_rate.NewLimiter(backends.Redis)
	} else {
		log.Warnln("redis not configured, /mcp requests will not be rate limited")
	}

	return s, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	if s.analytics == nil {
		return nil, errors.New("analytics service not set")
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gymstats-router"))

	mcpServer := gymstatsmcp.NewServer(s.analytics)
	var mcpHandler http.Handler = mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return mcpServer },
		nil,
	)
	if s.rateLimiter != nil {
		mcpHandler = middleware.RateLimit(
			s.rateLimiter,
			mcpRateLimitKey,
			s.config.MCPRateLimitAllowedPerMin,
			s.metricsManager,
		)(mcpHandler)
	}
	r.PathPrefix("/mcp").Handler(mcpHandler).Name("mcp")

	r.HandleFunc("/health", s.handleHealth).Methods("GET").Name("health")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp, err := json.Marshal(healthResponse{
		Status:  "ok",
		Version: s.versionInfo,
	})
	if err != nil {
		log.Errorf("marshal health response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp); err != nil {
		log.Errorf("write health response: %s", err)
	}
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:     router,
		Addr:        ipAndPort,
		ReadTimeout: time.Minute,
		// no WriteTimeout, MCP responses can be long-lived SSE streams
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.backends != nil {
		if err := s.backends.Close(); err != nil {
			log.Errorf("failed to close backends: %s", err)
		}
		log.Debugln("backends closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}
