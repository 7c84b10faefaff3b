package repository

import (
	"context"

	"github.com/artmarket/settlement/internal/domain/model"
)

// ArtworkRepository describes read access to artwork listings. All writes
// happen inside the settlement transaction and are not exposed here.
type ArtworkRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Artwork, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Artwork, error)
}

// ArtistRepository exposes artist sales statistics.
type ArtistRepository interface {
	GetStats(ctx context.Context, artistID int64) (*model.Artist, error)
}
