package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxImageBytes caps a decoded recipe image.
const MaxImageBytes = 10 << 20

var (
	ErrInvalidImage  = errors.New("invalid image data")
	ErrImageTooLarge = errors.New("image is too large")
)

var dataURIPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9.+-]+);base64,(.+)$`)

var allowedExtensions = map[string]string{
	"png":  "png",
	"jpeg": "jpg",
	"jpg":  "jpg",
	"gif":  "gif",
	"webp": "webp",
}

// ImageStore persists decoded images and returns the URL clients load them from.
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Image is a decoded base64 data URI.
type Image struct {
	Data        []byte
	Extension   string
	ContentType string
}

// DecodeDataURI parses "data:image/<ext>;base64,<payload>".
func DecodeDataURI(uri string) (*Image, error) {
	m := dataURIPattern.FindStringSubmatch(strings.TrimSpace(uri))
	if m == nil {
		return nil, ErrInvalidImage
	}
	subtype := strings.ToLower(m[1])
	ext, ok := allowedExtensions[subtype]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, subtype)
	}
	payload := m[2]
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+3 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}
	return &Image{Data: data, Extension: ext, ContentType: "image/" + subtype}, nil
}

// SaveImage stores img under a random name.
func SaveImage(ctx context.Context, store ImageStore, img *Image) (string, error) {
	name := fmt.Sprintf("%s.%s", uuid.New().String(), img.Extension)
	return store.Save(ctx, name, img.Data, img.ContentType)
}
