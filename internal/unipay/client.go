package unipay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/museum-space/betlemi10-api/internal/common"
	"github.com/museum-space/betlemi10-api/internal/obs"
)

const (
	authPath  = "/v3/auth"
	orderPath = "/v3/api/order/create"

	maxResponseBytes = 1 << 20
)

// tokenFieldCandidates lists the token field names observed in gateway
// auth responses, probed in priority order.
var tokenFieldCandidates = []string{"auth_token", "access_token", "accessToken", "token"}

// checkoutFieldCandidates lists the response field names that may carry
// the hosted checkout URL, probed in priority order.
var checkoutFieldCandidates = []string{"Checkout", "PaymentUrl", "payment_url", "redirect_url", "redirectUrl", "url"}

// Client submits authentication and order-creation calls to the UniPay
// REST API. Every order creation re-authenticates: tokens are valid for
// the lifetime of one call and are never cached.
type Client struct {
	BaseURL    string
	MerchantID string
	APIKey     string
	HTTP       *http.Client
	Logger     zerolog.Logger
}

// Authenticate exchanges merchant credentials for a short-lived bearer
// token. Network errors, non-2xx responses and responses without a
// recognisable token field all surface as authentication errors;
// upstream detail goes to logs only.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	payload := map[string]string{
		"merchant_id": c.MerchantID,
		"api_key":     c.APIKey,
	}

	start := time.Now()
	status, body, err := c.postJSON(ctx, c.BaseURL+authPath, "", payload)
	observeGatewayCall("auth", start)
	if err != nil {
		countGatewayAuth("error")
		return "", common.AuthenticationError(fmt.Errorf("auth request: %w", err))
	}
	if status < 200 || status > 299 {
		c.Logger.Error().Int("status", status).Str("body", truncate(body, 512)).Msg("unipay auth rejected")
		countGatewayAuth("rejected")
		return "", common.AuthenticationError(fmt.Errorf("auth status %d", status))
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		countGatewayAuth("error")
		return "", common.AuthenticationError(fmt.Errorf("decode auth response: %w", err))
	}
	token, matched := probeString(fields, tokenFieldCandidates)
	if token == "" {
		c.Logger.Error().Str("body", truncate(body, 512)).Msg("unipay auth response has no token field")
		countGatewayAuth("no_token")
		return "", common.AuthenticationError(fmt.Errorf("no token field in auth response"))
	}
	c.Logger.Debug().Str("token_field", matched).Msg("unipay auth ok")
	countGatewayAuth("ok")
	return token, nil
}

// CreateOrder submits an order to the gateway using the bearer token
// from a prior Authenticate call and returns the hosted checkout URL.
func (c *Client) CreateOrder(ctx context.Context, token string, order Order) (OrderResult, error) {
	start := time.Now()
	status, body, err := c.postJSON(ctx, c.BaseURL+orderPath, token, order)
	observeGatewayCall("order_create", start)
	if err != nil {
		countGatewayOrder("error")
		return OrderResult{}, common.OrderCreationError(fmt.Errorf("order request: %w", err))
	}
	if status != http.StatusOK && status != http.StatusCreated {
		c.Logger.Error().Int("status", status).Str("body", truncate(body, 512)).Msg("unipay order rejected")
		countGatewayOrder("rejected")
		return OrderResult{}, common.OrderCreationError(fmt.Errorf("order status %d", status))
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		countGatewayOrder("error")
		return OrderResult{}, common.OrderCreationError(fmt.Errorf("decode order response: %w", err))
	}
	if code, ok := numberValue(fields["errorcode"]); ok && code != 0 {
		c.Logger.Error().Float64("errorcode", code).Str("body", truncate(body, 512)).Msg("unipay order error")
		countGatewayOrder("gateway_error")
		return OrderResult{}, common.OrderCreationError(fmt.Errorf("gateway errorcode %v", code))
	}

	// The checkout URL usually lives under data, but flat variants of
	// the response have been observed too.
	scopes := []map[string]any{fields}
	if data, ok := fields["data"].(map[string]any); ok {
		scopes = append([]map[string]any{data}, scopes...)
	}
	result := OrderResult{}
	for _, scope := range scopes {
		if url, matched := probeString(scope, checkoutFieldCandidates); url != "" {
			result.CheckoutURL = url
			result.MatchedField = matched
			break
		}
	}
	if result.CheckoutURL == "" {
		c.Logger.Error().Str("body", truncate(body, 512)).Msg("unipay order response has no checkout url")
		countGatewayOrder("no_checkout_url")
		return OrderResult{}, common.OrderCreationError(fmt.Errorf("no checkout url in order response"))
	}
	if data, ok := fields["data"].(map[string]any); ok {
		result.UniPayOrderID = stringValue(data["UnipayOrderID"])
		result.UniPayOrderHashID = stringValue(data["UnipayOrderHashID"])
	}
	c.Logger.Info().
		Str("order_id", order.MerchantOrderID).
		Str("checkout_field", result.MatchedField).
		Msg("unipay order created")
	countGatewayOrder("ok")
	return result, nil
}

func (c *Client) postJSON(ctx context.Context, url, token string, payload any) (int, string, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

// EncodeURL base64-encodes an absolute URL, the wire format the gateway
// requires for redirect and callback URLs.
func EncodeURL(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeURL reverses EncodeURL.
func DecodeURL(encoded string) (string, error) {
	out, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// probeString returns the first candidate key whose value is a
// non-empty string, together with the key that matched.
func probeString(fields map[string]any, candidates []string) (string, string) {
	for _, name := range candidates {
		if v, ok := fields[name]; ok {
			if s := strings.TrimSpace(stringValue(v)); s != "" {
				return s, name
			}
		}
	}
	return "", ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func numberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func observeGatewayCall(call string, start time.Time) {
	if obs.GatewayCallLatency != nil {
		obs.GatewayCallLatency.WithLabelValues(call).Observe(obs.DurationMillis(time.Since(start)))
	}
}

func countGatewayAuth(result string) {
	if obs.GatewayAuthTotal != nil {
		obs.GatewayAuthTotal.WithLabelValues(result).Inc()
	}
}

func countGatewayOrder(result string) {
	if obs.GatewayOrderTotal != nil {
		obs.GatewayOrderTotal.WithLabelValues(result).Inc()
	}
}
