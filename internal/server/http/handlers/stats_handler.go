package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/artmarket/settlement/internal/domain/errors"
	"github.com/artmarket/settlement/internal/server/http/dto"
)

// StatsHandler serves artist sales statistics.
type StatsHandler struct {
	facade StatsFacade
}

// NewStatsHandler creates StatsHandler instance.
func NewStatsHandler(facade StatsFacade) *StatsHandler {
	return &StatsHandler{facade: facade}
}

// ArtistStats handles GET /api/artists/:id/stats.
func (h *StatsHandler) ArtistStats(c *gin.Context) {
	artistID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	artist, err := h.facade.ArtistStats(c.Request.Context(), artistID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.ArtistStatsResponse{
		ArtistID:     artist.ID,
		Name:         artist.Name,
		TotalSales:   artist.TotalSales,
		TotalRevenue: artist.TotalRevenue.StringFixed(2),
	})
}
