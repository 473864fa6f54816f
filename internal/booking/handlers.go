package booking

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/museum-space/betlemi10-api/internal/common"
	"github.com/museum-space/betlemi10-api/internal/obs"
)

// Handler exposes the booking endpoint of the shop flow.
type Handler struct {
	Svc       *Service
	Validator *Validator
	Logger    zerolog.Logger
}

type createReq struct {
	FirstName  string      `json:"firstName"`
	LastName   string      `json:"lastName"`
	Phone      string      `json:"phone"`
	Amount     json.Number `json:"amount"`
	TicketType string      `json:"ticketType"`
}

type createResp struct {
	Success           bool    `json:"success"`
	OrderID           string  `json:"orderId"`
	PaymentURL        string  `json:"paymentUrl"`
	UniPayOrderID     string  `json:"unipayOrderId,omitempty"`
	UniPayOrderHashID string  `json:"unipayOrderHashId,omitempty"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
}

// Create validates the booking form, creates a gateway order and
// returns the hosted checkout URL for the browser to redirect to.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil || h.Validator == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "booking handler unavailable", nil)
		return
	}
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		countOrderCreate("bad_request")
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid body", nil)
		return
	}
	order, fieldErrs := h.Validator.Validate(OrderRequest{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Amount:     req.Amount.String(),
		TicketType: req.TicketType,
	})
	if len(fieldErrs) > 0 {
		countOrderCreate("validation_failed")
		common.JSONAppError(w, common.ValidationError(fieldErrs))
		return
	}

	conf, err := h.Svc.Create(r.Context(), order)
	if err != nil {
		appErr := common.AsAppError(err)
		h.Logger.Error().Err(err).Str("code", appErr.Code).Msg("order creation failed")
		countOrderCreate("failed")
		common.JSONAppError(w, appErr)
		return
	}
	countOrderCreate("ok")
	common.JSON(w, http.StatusOK, createResp{
		Success:           true,
		OrderID:           conf.OrderID,
		PaymentURL:        conf.PaymentURL,
		UniPayOrderID:     conf.UniPayOrderID,
		UniPayOrderHashID: conf.UniPayOrderHashID,
		Amount:            conf.Amount,
		Currency:          conf.Currency,
	})
}

func countOrderCreate(result string) {
	if obs.OrderCreateTotal != nil {
		obs.OrderCreateTotal.WithLabelValues(result).Inc()
	}
}
