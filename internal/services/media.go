package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// MediaStore puts and gets binary media objects (cover art, previews,
// track masters) in the Firebase default storage bucket.
//
// Keys follow "{category}/{unix-ms}_{filename}", category one of
// "images", "audio/previews", "tracks".
type MediaStore struct {
	bucket        *storage.BucketHandle
	publicBaseURL string
}

// NewMediaStore initializes the Firebase Admin SDK and resolves the
// default storage bucket. publicBaseURL may be empty; PublicURL then
// falls back to the same-origin proxy path.
func NewMediaStore(ctx context.Context, credPath, bucketName, publicBaseURL string) (*MediaStore, error) {
	opt := option.WithCredentialsFile(credPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opt)
	if err != nil {
		return nil, err
	}
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, err
	}

	log.Println("Media storage bucket resolved")
	return &MediaStore{bucket: bucket, publicBaseURL: strings.TrimSuffix(publicBaseURL, "/")}, nil
}

// Put writes an object with its content type.
func (m *MediaStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := m.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Get reads an object back along with its stored content type.
// Returns ErrNotFound for unknown keys.
func (m *MediaStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	r, err := m.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}

	contentType := r.Attrs.ContentType
	if contentType == "" {
		contentType = InferContentType(key)
	}
	return data, contentType, nil
}

// PublicURL builds the retrieval URL for a stored key.
func (m *MediaStore) PublicURL(key string) string {
	if m.publicBaseURL != "" {
		return m.publicBaseURL + "/" + key
	}
	return "/api/uploads/" + key
}

// MediaKey builds a storage key for a fresh upload.
func MediaKey(category, filename string) string {
	return fmt.Sprintf("%s/%d_%s", category, time.Now().UnixMilli(), filename)
}

// ImageContentType resolves an image content type from the file
// extension, defaulting to image/jpeg.
func ImageContentType(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(filename), ".")) {
	case "webp":
		return "image/webp"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// AudioContentType resolves an audio content type from the file
// extension, defaulting to audio/mpeg.
func AudioContentType(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(filename), ".")) {
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "m4a":
		return "audio/mp4"
	case "aac":
		return "audio/aac"
	default:
		return "audio/mpeg"
	}
}

// InferContentType resolves a content type from any stored key,
// defaulting to application/octet-stream.
func InferContentType(key string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(key), ".")) {
	case "webp":
		return "image/webp"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "m4a":
		return "audio/mp4"
	case "aac":
		return "audio/aac"
	default:
		return "application/octet-stream"
	}
}
