package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus describes lifecycle of a recorded sale.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusRefunded  SaleStatus = "REFUNDED"
)

// Sale is the immutable record of one sold order item, created exactly once
// at settlement time. TransactionID is our own audit identifier, independent
// of the provider's transaction id.
type Sale struct {
	ID                int64
	TransactionID     string
	OrderID           int64
	OrderItemID       int64
	ArtworkID         int64
	ArtistID          int64
	Price             decimal.Decimal
	GalleryCommission decimal.Decimal
	ArtistEarning     decimal.Decimal
	Status            SaleStatus
	CreatedAt         time.Time
}
