package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/museum-space/betlemi10-api/internal/unipay"
)

// Gateway abstracts the payment gateway calls the booking flow needs.
type Gateway interface {
	Authenticate(ctx context.Context) (string, error)
	CreateOrder(ctx context.Context, token string, order unipay.Order) (unipay.OrderResult, error)
}

// Service turns a validated booking into a gateway order. It holds no
// state between calls; every booking re-authenticates with the gateway.
type Service struct {
	Gateway          Gateway
	PublicBaseURL    string
	Currency         string
	Locale           string
	BuyerEmailDomain string
	Logger           zerolog.Logger
}

// Confirmation is returned to the browser after a successful gateway
// order creation. Nothing about it is stored server-side.
type Confirmation struct {
	OrderID           string
	PaymentURL        string
	UniPayOrderID     string
	UniPayOrderHashID string
	Amount            float64
	Currency          string
}

// Create authenticates with the gateway and submits the order. The
// order-creation call is never attempted when authentication fails.
func (s *Service) Create(ctx context.Context, order Order) (Confirmation, error) {
	orderID := NewOrderID()
	submission := s.buildSubmission(orderID, order)

	s.Logger.Info().
		Str("order_id", orderID).
		Str("first_name", mask(order.FirstName)).
		Str("last_name", mask(order.LastName)).
		Float64("amount", order.Amount).
		Str("ticket_type", order.TicketType).
		Msg("creating payment order")

	token, err := s.Gateway.Authenticate(ctx)
	if err != nil {
		return Confirmation{}, err
	}
	result, err := s.Gateway.CreateOrder(ctx, token, submission)
	if err != nil {
		return Confirmation{}, err
	}
	return Confirmation{
		OrderID:           orderID,
		PaymentURL:        result.CheckoutURL,
		UniPayOrderID:     result.UniPayOrderID,
		UniPayOrderHashID: result.UniPayOrderHashID,
		Amount:            order.Amount,
		Currency:          s.Currency,
	}, nil
}

func (s *Service) buildSubmission(orderID string, order Order) unipay.Order {
	base := strings.TrimRight(s.PublicBaseURL, "/")
	return unipay.Order{
		MerchantUser:       s.buyerEmail(order),
		MerchantOrderID:    orderID,
		OrderPrice:         order.Amount,
		OrderCurrency:      s.Currency,
		OrderName:          order.TicketType,
		OrderDescription:   fmt.Sprintf("%s - %s %s - %s", order.TicketType, order.FirstName, order.LastName, order.Phone),
		SuccessRedirectURL: unipay.EncodeURL(fmt.Sprintf("%s/payment-success.html?order=%s", base, orderID)),
		CancelRedirectURL:  unipay.EncodeURL(fmt.Sprintf("%s/payment-cancel.html?order=%s", base, orderID)),
		CallbackURL:        unipay.EncodeURL(base + "/api/v1/webhooks/unipay"),
		Language:           s.Locale,
	}
}

// buyerEmail synthesizes a placeholder buyer identifier. The booking
// form collects no real email address, so the gateway cannot contact
// the customer through this value.
func (s *Service) buyerEmail(order Order) string {
	local := fmt.Sprintf("%s.%s", emailToken(order.FirstName), emailToken(order.LastName))
	return local + "@" + s.BuyerEmailDomain
}

func emailToken(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

func mask(s string) string {
	if len(s) <= 2 {
		return "***"
	}
	return s[:2] + "***"
}
