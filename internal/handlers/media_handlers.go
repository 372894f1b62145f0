package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	"beatshop/internal/models"
	"beatshop/internal/services"
)

type mediaReader interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

type trackResolver interface {
	GetByAudioKey(ctx context.Context, key string) (*models.Track, error)
}

type listingResolver interface {
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
}

// MediaHandler streams stored media objects: anonymous assets via the
// uploads proxy, track masters behind the purchase gate.
type MediaHandler struct {
	media    mediaReader
	tracks   trackResolver
	listings listingResolver
}

func NewMediaHandler(media mediaReader, tracks trackResolver, listings listingResolver) *MediaHandler {
	return &MediaHandler{media: media, tracks: tracks, listings: listings}
}

// ServeAudio streams a track master only after its owning listing has
// sold. The binary body is never touched before the gate passes.
func (h *MediaHandler) ServeAudio(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Audio key is required"})
	}

	ctx := c.Request().Context()

	track, err := h.tracks.GetByAudioKey(ctx, key)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{"error": "Track not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve track")
	}

	listing, err := h.listings.GetByID(ctx, track.ListingID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{"error": "Track not found"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve listing")
	}

	if !listing.Sold {
		return c.JSON(http.StatusForbidden, map[string]interface{}{
			"error": "This audio is only available after purchase",
		})
	}

	data, contentType, err := h.media.Get(ctx, key)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{"error": "Audio file not found in storage"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read audio")
	}

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	c.Response().Header().Set("Cache-Control", "private, max-age=3600")
	return c.Blob(http.StatusOK, contentType, data)
}

// ServeUpload streams any stored object by key with a far-future cache
// header. Intended for non-gated assets only: cover art and previews.
func (h *MediaHandler) ServeUpload(c echo.Context) error {
	key := c.Param("*")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "File path is required")
	}

	data, contentType, err := h.media.Get(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=31536000")
	return c.Blob(http.StatusOK, contentType, data)
}
