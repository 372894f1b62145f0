package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"beatshop/internal/models"
	"beatshop/internal/services"
)

// featuredCacheTTL keeps the portfolio carousel out of the database on
// every page view.
const featuredCacheTTL = time.Minute

// ShopHandler serves the public catalog as JSON.
type ShopHandler struct {
	listings *services.ListingService
	tracks   *services.TrackService
	cache    *services.RedisCache
}

func NewShopHandler(listings *services.ListingService, tracks *services.TrackService, cache *services.RedisCache) *ShopHandler {
	return &ShopHandler{listings: listings, tracks: tracks, cache: cache}
}

// ListListings returns the full catalog, newest first.
func (h *ShopHandler) ListListings(c echo.Context) error {
	listings, err := h.listings.GetAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch listings")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"listings": listings})
}

// GetListing returns one listing with its tracks in display order.
func (h *ShopHandler) GetListing(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid listing ID")
	}

	ctx := c.Request().Context()
	listing, err := h.listings.GetByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Listing not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch listing")
	}

	tracks, err := h.tracks.GetByListing(ctx, uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch tracks")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"listing": listing,
		"tracks":  tracks,
	})
}

// Featured returns the featured listings, cached briefly.
func (h *ShopHandler) Featured(c echo.Context) error {
	ctx := c.Request().Context()
	listings, err := services.GetOrSet(h.cache, ctx, "listings:featured", featuredCacheTTL, func() ([]models.Listing, error) {
		return h.listings.GetFeatured(ctx)
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch featured listings")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"listings": listings})
}
