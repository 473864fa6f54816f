package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker probes the upstream payment gateway for readiness.
type Checker interface {
	PingGateway(ctx context.Context, timeout time.Duration) error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker        Checker
	GatewayTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on gateway reachability.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}
	gatewayStatus := "ok"
	if err := h.Checker.PingGateway(r.Context(), h.gatewayTimeout()); err != nil {
		gatewayStatus = err.Error()
	}
	status := map[string]string{
		"gateway": gatewayStatus,
	}
	w.Header().Set("Content-Type", "application/json")
	if gatewayStatus != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) gatewayTimeout() time.Duration {
	if h.GatewayTimeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.GatewayTimeout
}
