package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"beatshop/internal/models"
	"beatshop/internal/services"
)

// AdminHandler covers the admin-gated catalog CRUD surface.
type AdminHandler struct {
	listings *services.ListingService
	tracks   *services.TrackService
	media    *services.MediaStore
}

func NewAdminHandler(listings *services.ListingService, tracks *services.TrackService, media *services.MediaStore) *AdminHandler {
	return &AdminHandler{listings: listings, tracks: tracks, media: media}
}

type trackUpload struct {
	title string
	file  *multipart.FileHeader
}

// AddListing creates a listing plus its tracks from a multipart form.
// The cover photo is uploaded to images/, a preview is derived from the
// first track into audio/previews/, and each track master goes to
// tracks/. Listing insert and track inserts are individual statements;
// a failure partway through leaves a listing with fewer tracks than
// submitted (best-effort, matching the catalog store's guarantees).
func (h *AdminHandler) AddListing(c echo.Context) error {
	ctx := c.Request().Context()

	title := c.FormValue("title")
	listingType := models.ListingType(c.FormValue("type"))
	priceStr := c.FormValue("price")

	var details []string
	if title == "" {
		details = append(details, "Title is required")
	}
	if !models.ValidListingType(listingType) {
		details = append(details, "Invalid type")
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price < 0 {
		details = append(details, "Price must be a non-negative number")
	}

	var bpm *int
	if bpmStr := c.FormValue("bpm"); bpmStr != "" {
		v, err := strconv.Atoi(bpmStr)
		if err != nil || v < 0 || v > 300 {
			details = append(details, "BPM must be between 0 and 300")
		} else {
			bpm = &v
		}
	}

	// Collect track files before any write; at least one is required
	var uploads []trackUpload
	for i := 1; ; i++ {
		file, err := c.FormFile(fmt.Sprintf("track_file_%d", i))
		if err != nil {
			break
		}
		trackTitle := c.FormValue(fmt.Sprintf("track_title_%d", i))
		if trackTitle == "" {
			trackTitle = fmt.Sprintf("Track %d", i)
		}
		uploads = append(uploads, trackUpload{title: trackTitle, file: file})
	}
	if len(uploads) == 0 {
		details = append(details, "At least one track file is required")
	}

	if len(details) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Validation error",
			"details": details,
		})
	}

	listing := models.Listing{
		Title:    title,
		Type:     listingType,
		Price:    price,
		BPM:      bpm,
		Featured: c.FormValue("featured") == "1",
	}
	if v := c.FormValue("description"); v != "" {
		listing.Description = &v
	}
	if v := c.FormValue("length"); v != "" {
		listing.Length = &v
	}
	if v := c.FormValue("key"); v != "" {
		listing.Key = &v
	}
	if v := c.FormValue("stripe_price_id"); v != "" {
		listing.StripePriceID = &v
	}

	// Cover photo is optional
	if cover, err := c.FormFile("cover_photo"); err == nil && cover.Size > 0 {
		key := services.MediaKey("images", cover.Filename)
		if err := h.uploadFile(c, cover, key, services.ImageContentType(cover.Filename)); err != nil {
			return h.uploadError(c, "cover photo", err)
		}
		url := h.media.PublicURL(key)
		listing.ImageURL = &url
	}

	// Preview audio is derived from the first track file
	first := uploads[0]
	previewKey := services.MediaKey("audio/previews", "preview_"+first.file.Filename)
	if err := h.uploadFile(c, first.file, previewKey, services.AudioContentType(first.file.Filename)); err != nil {
		return h.uploadError(c, "preview audio", err)
	}
	previewURL := h.media.PublicURL(previewKey)
	listing.PreviewAudioURL = &previewURL

	if err := h.listings.Create(ctx, &listing); err != nil {
		c.Logger().Errorf("create listing: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to create listing",
		})
	}

	for i, upload := range uploads {
		key := services.MediaKey("tracks", fmt.Sprintf("%d_%s", i, upload.file.Filename))
		if err := h.uploadFile(c, upload.file, key, services.AudioContentType(upload.file.Filename)); err != nil {
			c.Logger().Errorf("upload track %d for listing %d: %v", i+1, listing.ID, err)
			continue
		}
		track := models.Track{
			ListingID: listing.ID,
			Title:     upload.title,
			AudioKey:  key,
			Position:  i + 1,
		}
		if err := h.tracks.Create(ctx, &track); err != nil {
			c.Logger().Errorf("create track %d for listing %d: %v", i+1, listing.ID, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      listing.ID,
		"message": "Listing created successfully",
	})
}

func (h *AdminHandler) uploadFile(c echo.Context, file *multipart.FileHeader, key, contentType string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	return h.media.Put(c.Request().Context(), key, data, contentType)
}

func (h *AdminHandler) uploadError(c echo.Context, what string, err error) error {
	c.Logger().Errorf("upload %s: %v", what, err)
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"success": false,
		"error":   "Failed to store " + what,
	})
}

// UpdateListing applies an admin edit and redirects back to the listing
// detail page. Featured follows checkbox semantics: absent means false.
func (h *AdminHandler) UpdateListing(c echo.Context) error {
	ctx := c.Request().Context()

	idStr := c.FormValue("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid listing ID")
	}

	exists, err := h.listings.Exists(ctx, uint(id))
	if err != nil {
		return h.updateError(c, err)
	}
	if !exists {
		return echo.NewHTTPError(http.StatusNotFound, "Listing not found")
	}

	var update services.ListingUpdate

	if v := c.FormValue("title"); v != "" {
		update.Title = &v
	}
	if v := c.FormValue("type"); v != "" {
		listingType := models.ListingType(v)
		if !models.ValidListingType(listingType) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid type")
		}
		update.Type = &listingType
	}
	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Price must be a non-negative number")
		}
		update.Price = &price
	}
	if v := c.FormValue("description"); v != "" {
		update.Description = &v
	}
	if v := c.FormValue("length"); v != "" {
		update.Length = &v
	}
	if v := c.FormValue("bpm"); v != "" {
		bpm, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "BPM must be a number")
		}
		update.BPM = &bpm
	}
	if v := c.FormValue("key"); v != "" {
		update.Key = &v
	}
	if v := c.FormValue("image_url"); v != "" {
		update.ImageURL = &v
	}
	if v := c.FormValue("preview_audio_url"); v != "" {
		update.PreviewAudioURL = &v
	}
	if v := c.FormValue("stripe_price_id"); v != "" {
		update.StripePriceID = &v
	}
	featured := c.FormValue("featured") == "on" || c.FormValue("featured") == "true"
	update.Featured = &featured

	if err := h.listings.Update(ctx, uint(id), update); err != nil {
		if errors.Is(err, services.ErrNoFields) {
			return echo.NewHTTPError(http.StatusBadRequest, "No fields to update")
		}
		return h.updateError(c, err)
	}

	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/admin/listings/%d", id))
}

func (h *AdminHandler) updateError(c echo.Context, err error) error {
	c.Logger().Errorf("update listing: %v", err)
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error":   "Failed to update listing",
		"details": "Unexpected database failure",
	})
}

// DeleteListing removes a listing and all of its tracks.
func (h *AdminHandler) DeleteListing(c echo.Context) error {
	ctx := c.Request().Context()

	idStr := c.QueryParam("id")
	if idStr == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Missing listing ID",
		})
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid listing ID",
		})
	}

	exists, err := h.listings.Exists(ctx, uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete listing")
	}
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "Listing not found",
		})
	}

	if err := h.listings.Delete(ctx, uint(id)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete listing")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Listing deleted successfully",
	})
}

// DeleteTrack removes a single track.
func (h *AdminHandler) DeleteTrack(c echo.Context) error {
	ctx := c.Request().Context()

	idStr := c.QueryParam("id")
	if idStr == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Missing track ID",
		})
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Invalid track ID",
		})
	}

	exists, err := h.tracks.Exists(ctx, uint(id))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete track")
	}
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "Track not found",
		})
	}

	if err := h.tracks.Delete(ctx, uint(id)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete track")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Track deleted successfully",
	})
}
