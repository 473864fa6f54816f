package unipay

// Order is the order-creation payload in the gateway's wire format.
// The three URL fields must already be base64 encoded.
type Order struct {
	MerchantUser       string  `json:"MerchantUser"`
	MerchantOrderID    string  `json:"MerchantOrderID"`
	OrderPrice         float64 `json:"OrderPrice"`
	OrderCurrency      string  `json:"OrderCurrency"`
	OrderName          string  `json:"OrderName"`
	OrderDescription   string  `json:"OrderDescription"`
	SuccessRedirectURL string  `json:"SuccessRedirectUrl"`
	CancelRedirectURL  string  `json:"CancelRedirectUrl"`
	CallbackURL        string  `json:"CallBackUrl"`
	Language           string  `json:"Language,omitempty"`
}

// OrderResult is the usable part of the gateway's order-creation response.
type OrderResult struct {
	CheckoutURL       string
	UniPayOrderID     string
	UniPayOrderHashID string

	// MatchedField records which response field supplied the checkout
	// URL, to surface gateway contract drift in logs.
	MatchedField string
}
