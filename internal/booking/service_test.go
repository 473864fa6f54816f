package booking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/museum-space/betlemi10-api/internal/booking"
	"github.com/museum-space/betlemi10-api/internal/common"
	"github.com/museum-space/betlemi10-api/internal/unipay"
)

type fakeGateway struct {
	authErr    error
	orderErr   error
	authCalls  int
	orderCalls int
	lastToken  string
	lastOrder  unipay.Order
	result     unipay.OrderResult
}

func (g *fakeGateway) Authenticate(_ context.Context) (string, error) {
	g.authCalls++
	if g.authErr != nil {
		return "", g.authErr
	}
	return "test-token", nil
}

func (g *fakeGateway) CreateOrder(_ context.Context, token string, order unipay.Order) (unipay.OrderResult, error) {
	g.orderCalls++
	g.lastToken = token
	g.lastOrder = order
	if g.orderErr != nil {
		return unipay.OrderResult{}, g.orderErr
	}
	return g.result, nil
}

func newService(g *fakeGateway) *booking.Service {
	return &booking.Service{
		Gateway:          g,
		PublicBaseURL:    "https://betlemi10.com",
		Currency:         "GEL",
		Locale:           "GE",
		BuyerEmailDomain: "museum-space.ge",
		Logger:           zerolog.Nop(),
	}
}

func sampleOrder() booking.Order {
	return booking.Order{
		FirstName:  "Nino",
		LastName:   "Beridze",
		Phone:      "+995599123456",
		Amount:     25,
		TicketType: "Adult Ticket",
	}
}

func TestCreateSuccess(t *testing.T) {
	gw := &fakeGateway{result: unipay.OrderResult{
		CheckoutURL:       "https://pay.example/x",
		UniPayOrderID:     "42",
		UniPayOrderHashID: "abc",
	}}
	conf, err := newService(gw).Create(context.Background(), sampleOrder())
	require.NoError(t, err)
	require.Equal(t, 1, gw.authCalls)
	require.Equal(t, 1, gw.orderCalls)
	require.Equal(t, "test-token", gw.lastToken)
	require.Equal(t, "https://pay.example/x", conf.PaymentURL)
	require.Equal(t, "42", conf.UniPayOrderID)
	require.Equal(t, "GEL", conf.Currency)
	require.Equal(t, 25.0, conf.Amount)
	require.NotEmpty(t, conf.OrderID)
}

func TestCreateAuthFailureSkipsOrderCall(t *testing.T) {
	gw := &fakeGateway{authErr: common.AuthenticationError(errors.New("no token"))}
	_, err := newService(gw).Create(context.Background(), sampleOrder())
	require.Error(t, err)
	appErr := common.AsAppError(err)
	require.Equal(t, common.CodeAuthFailed, appErr.Code)
	require.Equal(t, 0, gw.orderCalls)
}

func TestCreateOrderFailure(t *testing.T) {
	gw := &fakeGateway{orderErr: common.OrderCreationError(errors.New("rejected"))}
	_, err := newService(gw).Create(context.Background(), sampleOrder())
	require.Error(t, err)
	require.Equal(t, common.CodeOrderCreate, common.AsAppError(err).Code)
}

func TestSubmissionFields(t *testing.T) {
	gw := &fakeGateway{result: unipay.OrderResult{CheckoutURL: "https://pay.example/x"}}
	conf, err := newService(gw).Create(context.Background(), sampleOrder())
	require.NoError(t, err)

	sub := gw.lastOrder
	require.Equal(t, conf.OrderID, sub.MerchantOrderID)
	require.Equal(t, "nino.beridze@museum-space.ge", sub.MerchantUser)
	require.Equal(t, 25.0, sub.OrderPrice)
	require.Equal(t, "GEL", sub.OrderCurrency)
	require.Equal(t, "Adult Ticket", sub.OrderName)
	require.Equal(t, "Adult Ticket - Nino Beridze - +995599123456", sub.OrderDescription)
	require.Equal(t, "GE", sub.Language)

	success, err := unipay.DecodeURL(sub.SuccessRedirectURL)
	require.NoError(t, err)
	require.Equal(t, "https://betlemi10.com/payment-success.html?order="+conf.OrderID, success)

	cancel, err := unipay.DecodeURL(sub.CancelRedirectURL)
	require.NoError(t, err)
	require.Equal(t, "https://betlemi10.com/payment-cancel.html?order="+conf.OrderID, cancel)

	cb, err := unipay.DecodeURL(sub.CallbackURL)
	require.NoError(t, err)
	require.Equal(t, "https://betlemi10.com/api/v1/webhooks/unipay", cb)
}

func TestBuyerEmailHandlesSpaces(t *testing.T) {
	gw := &fakeGateway{result: unipay.OrderResult{CheckoutURL: "https://pay.example/x"}}
	order := sampleOrder()
	order.FirstName = "Ana Maria"
	_, err := newService(gw).Create(context.Background(), order)
	require.NoError(t, err)
	require.Equal(t, "ana-maria.beridze@museum-space.ge", gw.lastOrder.MerchantUser)
}
