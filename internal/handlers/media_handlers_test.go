package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"beatshop/internal/models"
	"beatshop/internal/services"
)

type fakeMediaReader struct {
	objects map[string][]byte
}

func (f *fakeMediaReader) Get(_ context.Context, key string) ([]byte, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", services.ErrNotFound
	}
	return data, "audio/mpeg", nil
}

type fakeTrackResolver struct {
	tracks map[string]*models.Track
}

func (f *fakeTrackResolver) GetByAudioKey(_ context.Context, key string) (*models.Track, error) {
	track, ok := f.tracks[key]
	if !ok {
		return nil, services.ErrNotFound
	}
	return track, nil
}

type fakeListingResolver struct {
	listings map[uint]*models.Listing
}

func (f *fakeListingResolver) GetByID(_ context.Context, id uint) (*models.Listing, error) {
	listing, ok := f.listings[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return listing, nil
}

const masterAudio = "ID3 master bytes"

func newMediaTestHandler() *MediaHandler {
	media := &fakeMediaReader{objects: map[string][]byte{
		"tracks/1_sold.mp3":   []byte(masterAudio),
		"tracks/2_unsold.mp3": []byte(masterAudio),
	}}
	tracks := &fakeTrackResolver{tracks: map[string]*models.Track{
		"tracks/1_sold.mp3":   {ID: 1, ListingID: 1, Title: "Sold Master", AudioKey: "tracks/1_sold.mp3"},
		"tracks/2_unsold.mp3": {ID: 2, ListingID: 2, Title: "Unsold Master", AudioKey: "tracks/2_unsold.mp3"},
	}}
	listings := &fakeListingResolver{listings: map[uint]*models.Listing{
		1: {ID: 1, Title: "Sold Pack", Sold: true},
		2: {ID: 2, Title: "Unsold Pack"},
	}}
	return NewMediaHandler(media, tracks, listings)
}

func serveAudio(t *testing.T, h *MediaHandler, key string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/serve-audio?key="+url.QueryEscape(key), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ServeAudio(c); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	return rec
}

func TestServeAudioUnknownKey(t *testing.T) {
	h := newMediaTestHandler()

	rec := serveAudio(t, h, "tracks/999_missing.mp3")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
}

func TestServeAudioUnsoldListingIsGated(t *testing.T) {
	h := newMediaTestHandler()

	rec := serveAudio(t, h, "tracks/2_unsold.mp3")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d; want 403 before purchase", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte(masterAudio)) {
		t.Error("403 response leaked the audio body")
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		t.Errorf("content type = %q; want a JSON error payload", ct)
	}
}

func TestServeAudioSoldListing(t *testing.T) {
	h := newMediaTestHandler()

	rec := serveAudio(t, h, "tracks/1_sold.mp3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if rec.Body.String() != masterAudio {
		t.Errorf("body = %q; want the stored master bytes", rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "audio/mpeg" {
		t.Errorf("content type = %q; want audio/mpeg", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "1_sold.mp3") {
		t.Errorf("Content-Disposition = %q; want attachment with the file name", cd)
	}
}
