package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArtworkStatus describes listing availability.
type ArtworkStatus string

const (
	ArtworkStatusAvailable ArtworkStatus = "AVAILABLE"
	ArtworkStatusSold      ArtworkStatus = "SOLD"
)

// Artwork is a unique original listed by an artist. Quantity is always one
// per listing; once sold it stays sold even if the payment is later refunded.
type Artwork struct {
	ID          int64
	ArtistID    int64
	Title       string
	Price       decimal.Decimal
	Currency    string
	IsAvailable bool
	Status      ArtworkStatus
	SoldCount   int
	CreatedAt   time.Time
}

// Artist aggregates sales statistics updated inside the settlement
// transaction. TotalRevenue counts artist earnings, not gross prices.
type Artist struct {
	ID           int64
	Name         string
	TotalSales   int
	TotalRevenue decimal.Decimal
}
