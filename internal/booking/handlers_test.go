package booking_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/museum-space/betlemi10-api/internal/booking"
	"github.com/museum-space/betlemi10-api/internal/common"
	"github.com/museum-space/betlemi10-api/internal/unipay"
)

func authFailure(msg string) error {
	return common.AuthenticationError(errors.New(msg))
}

func newHandler(gw *fakeGateway) *booking.Handler {
	return &booking.Handler{
		Svc:       newService(gw),
		Validator: booking.NewValidator(),
		Logger:    zerolog.Nop(),
	}
}

func postOrder(t *testing.T, h *booking.Handler, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Create(rr, req)
	return rr
}

func TestCreateHandlerSuccess(t *testing.T) {
	gw := &fakeGateway{result: unipay.OrderResult{CheckoutURL: "https://pay.example/x", UniPayOrderID: "42"}}
	rr := postOrder(t, newHandler(gw), map[string]any{
		"firstName":  "Nino",
		"lastName":   "Beridze",
		"phone":      "+995599123456",
		"amount":     25,
		"ticketType": "Adult Ticket",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, true, resp["success"])
	require.Equal(t, "https://pay.example/x", resp["paymentUrl"])
	require.Equal(t, "42", resp["unipayOrderId"])
	require.Equal(t, 25.0, resp["amount"])
	require.Equal(t, "GEL", resp["currency"])
	require.NotEmpty(t, resp["orderId"])
}

func TestCreateHandlerAmountAsString(t *testing.T) {
	gw := &fakeGateway{result: unipay.OrderResult{CheckoutURL: "https://pay.example/x"}}
	rr := postOrder(t, newHandler(gw), map[string]any{
		"firstName": "Nino",
		"lastName":  "Beridze",
		"phone":     "599123456",
		"amount":    "17.50",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 17.5, gw.lastOrder.OrderPrice)
}

func TestCreateHandlerValidation(t *testing.T) {
	gw := &fakeGateway{}
	rr := postOrder(t, newHandler(gw), map[string]any{
		"firstName": "N",
		"lastName":  "Beridze",
		"phone":     "12345",
		"amount":    -3,
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, 0, gw.authCalls)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details []struct {
				Field string `json:"field"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	require.NotEmpty(t, resp.Error.Details)
}

func TestCreateHandlerInvalidBody(t *testing.T) {
	h := newHandler(&fakeGateway{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	h.Create(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateHandlerGatewayErrorStaysGeneric(t *testing.T) {
	gw := &fakeGateway{authErr: authFailure("upstream said 503: secret detail")}
	rr := postOrder(t, newHandler(gw), map[string]any{
		"firstName": "Nino",
		"lastName":  "Beridze",
		"phone":     "599123456",
		"amount":    10,
	})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "secret detail")
	require.Contains(t, rr.Body.String(), "AUTH_FAILED")
}
