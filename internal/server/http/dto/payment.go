package dto

// InitiatePaymentRequest selects the payment provider for an order.
type InitiatePaymentRequest struct {
	Provider string `json:"provider"`
}

// PaymentSessionResponse returns the provider session for checkout.
type PaymentSessionResponse struct {
	Provider    string `json:"provider"`
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// CaptureRequest finalizes an approved wallet payment.
type CaptureRequest struct {
	OrderID         int64  `json:"order_id"`
	ProviderOrderID string `json:"provider_order_id"`
}

// SettlementResponse reports the result of applying a payment outcome.
type SettlementResponse struct {
	OrderNumber    string   `json:"order_number"`
	PaymentStatus  string   `json:"payment_status"`
	AlreadySettled bool     `json:"already_settled"`
	SaleTxIDs      []string `json:"sale_tx_ids,omitempty"`
}

// ArtistStatsResponse reports aggregate artist sales statistics.
type ArtistStatsResponse struct {
	ArtistID     int64  `json:"artist_id"`
	Name         string `json:"name"`
	TotalSales   int    `json:"total_sales"`
	TotalRevenue string `json:"total_revenue"`
}
