package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/museum-space/betlemi10-api/internal/booking"
	"github.com/museum-space/betlemi10-api/internal/callback"
	"github.com/museum-space/betlemi10-api/internal/common"
	"github.com/museum-space/betlemi10-api/internal/config"
	"github.com/museum-space/betlemi10-api/internal/diag"
	"github.com/museum-space/betlemi10-api/internal/health"
	"github.com/museum-space/betlemi10-api/internal/obs"
	"github.com/museum-space/betlemi10-api/internal/ratelimit"
	"github.com/museum-space/betlemi10-api/internal/unipay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "betlemi10")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", false)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "betlemi10-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	gateway := &unipay.Client{
		BaseURL:    cfg.UniPayBaseURL,
		MerchantID: cfg.UniPayMerchantID,
		APIKey:     cfg.UniPayAPIKey,
		HTTP: &http.Client{
			Timeout:   cfg.UniPayTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: logger.With().Str("component", "unipay").Logger(),
	}

	bookingSvc := &booking.Service{
		Gateway:          gateway,
		PublicBaseURL:    cfg.PublicBaseURL,
		Currency:         cfg.CurrencyCode,
		Locale:           cfg.Locale,
		BuyerEmailDomain: cfg.BuyerEmailDomain,
		Logger:           logger.With().Str("component", "booking").Logger(),
	}
	bookingHandler := &booking.Handler{
		Svc:       bookingSvc,
		Validator: booking.NewValidator(),
		Logger:    logger.With().Str("component", "booking").Logger(),
	}
	receiver := &callback.Receiver{
		Secret: cfg.UniPayWebhookSecret,
		Logger: logger.With().Str("component", "callback").Logger(),
	}

	orderLimiter := ratelimit.Handler{
		Limiter: ratelimit.New(cfg.OrderRateLimitWindow, cfg.OrderRateLimitMax),
		Key:     common.ClientIP,
		OnError: func(err error) { logger.Error().Err(err).Msg("rate limiter") },
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		common.MethodNotAllowed(w)
	})

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:        gatewayChecker{baseURL: cfg.UniPayBaseURL},
		GatewayTimeout: envDurationMillis("HEALTH_READY_GATEWAY_TIMEOUT_MS", 500),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.With(orderLimiter.Middleware).Post("/orders", bookingHandler.Create)
		v.Post("/webhooks/unipay", receiver.Handle)
		v.Get("/webhooks/unipay", receiver.Handle)

		if cfg.DiagnosticsEnabled && !cfg.IsProduction() {
			v.Get("/diag/env", diag.Handler{Cfg: cfg}.Summary)
		}
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

// gatewayChecker probes the payment gateway for readiness with a short
// bounded request. Any response, even an error status, counts as
// reachable.
type gatewayChecker struct {
	baseURL string
}

func (c gatewayChecker) PingGateway(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int64) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil && parsed > 0 {
			return time.Duration(parsed) * time.Millisecond
		}
	}
	return time.Duration(fallback) * time.Millisecond
}
