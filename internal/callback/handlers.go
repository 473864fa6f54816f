package callback

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/museum-space/betlemi10-api/internal/common"
	"github.com/museum-space/betlemi10-api/internal/obs"
	"github.com/museum-space/betlemi10-api/internal/unipay"
)

const maxBodyBytes = 1 << 20

// Receiver accepts asynchronous payment-status callbacks from the
// gateway. Its acknowledgement contract is deliberate: except for a
// missing order identifier (400) or an invalid signature (401), it
// always answers 200 so the gateway does not retry. Being acknowledged
// and being processed are two distinct outcomes, logged separately.
type Receiver struct {
	// Secret enables HMAC verification of the raw body. When set,
	// verification is mandatory; unsigned callbacks are rejected.
	Secret string
	Logger zerolog.Logger
}

// Handle serves both POST callbacks from the gateway and GET probes
// used for manual testing.
func (h *Receiver) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		common.JSON(w, http.StatusOK, map[string]any{
			"message":   "unipay callback endpoint active",
			"method":    r.Method,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	eventID := uuid.NewString()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.Logger.Error().Str("event_id", eventID).Err(err).Msg("callback body read failed")
		h.acknowledge(w, eventID, "", false)
		return
	}

	if h.Secret != "" {
		signature := r.Header.Get("x-unipay-signature")
		if signature == "" {
			signature = r.Header.Get("unipay-signature")
		}
		if !unipay.VerifySignature(h.Secret, body, signature) {
			h.Logger.Warn().
				Str("event_id", eventID).
				Str("remote_ip", common.ClientIP(r)).
				Msg("callback signature verification failed")
			countCallback(StatusUnknown, "invalid_signature")
			common.JSONError(w, http.StatusUnauthorized, common.CodeInvalidSignature, "invalid signature", nil)
			return
		}
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		h.Logger.Error().Str("event_id", eventID).Err(err).Msg("callback processing failed")
		countCallback(StatusUnknown, "error")
		h.acknowledge(w, eventID, "", false)
		return
	}

	orderID := firstString(fields, "MerchantOrderID", "order_id")
	if orderID == "" {
		h.Logger.Warn().Str("event_id", eventID).Msg("callback missing order identifier")
		countCallback(StatusUnknown, "missing_order_id")
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "missing order id", nil)
		return
	}

	rawStatus := firstString(fields, "Status", "PaymentStatus", "status")
	status := Classify(rawStatus)

	evt := h.Logger.Info().
		Str("event_id", eventID).
		Str("order_id", orderID).
		Str("status", string(status)).
		Str("raw_status", rawStatus)
	if amount := firstString(fields, "Amount", "amount"); amount != "" {
		evt = evt.Str("amount", amount)
	}
	if currency := firstString(fields, "Currency", "currency"); currency != "" {
		evt = evt.Str("currency", currency)
	}
	if txID := firstString(fields, "TransactionID", "transaction_id"); txID != "" {
		evt = evt.Str("transaction_id", txID)
	}
	if hashID := firstString(fields, "OrderHashID"); hashID != "" {
		evt = evt.Str("order_hash_id", hashID)
	}
	evt.Msg("callback processed")

	if status == StatusPaid {
		// TODO: confirmation email, ticket issuance and inventory
		// update once order state is persisted somewhere.
		h.Logger.Info().Str("event_id", eventID).Str("order_id", orderID).Msg("payment confirmed, fulfillment pending")
	}

	countCallback(status, "processed")
	h.acknowledge(w, eventID, orderID, true)
}

// acknowledge writes the 200 receipt the gateway expects. processed=false
// means the event was received but could not be handled; the gateway
// must still not retry it.
func (h *Receiver) acknowledge(w http.ResponseWriter, eventID, orderID string, processed bool) {
	h.Logger.Info().
		Str("event_id", eventID).
		Str("order_id", orderID).
		Bool("processed", processed).
		Msg("callback acknowledged")
	resp := map[string]any{
		"success":   true,
		"message":   "callback acknowledged",
		"processed": processed,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if processed {
		resp["message"] = "callback processed"
	}
	if orderID != "" {
		resp["orderId"] = orderID
	}
	common.JSON(w, http.StatusOK, resp)
}

func firstString(fields map[string]any, names ...string) string {
	for _, name := range names {
		switch v := fields[name].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func countCallback(status Status, outcome string) {
	if obs.CallbackTotal != nil {
		obs.CallbackTotal.WithLabelValues(string(status), outcome).Inc()
	}
}
