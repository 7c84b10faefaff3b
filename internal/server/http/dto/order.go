package dto

import "time"

// ShippingInfo describes the delivery destination for an order.
type ShippingInfo struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// OrderCreateRequest describes the order creation payload.
type OrderCreateRequest struct {
	ArtworkIDs []int64      `json:"artwork_ids"`
	Currency   string       `json:"currency"`
	Shipping   ShippingInfo `json:"shipping"`
}

// OrderItemResponse describes one line of an order.
type OrderItemResponse struct {
	ArtworkID int64  `json:"artwork_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// OrderResponse describes an order with derived totals.
type OrderResponse struct {
	Number        string              `json:"number"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	Currency      string              `json:"currency"`
	Subtotal      string              `json:"subtotal"`
	ShippingCost  string              `json:"shipping_cost"`
	Tax           string              `json:"tax"`
	Total         string              `json:"total"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
}
