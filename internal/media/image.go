// Package media turns images picked by the platform into payloads the API accepts.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrPickCancelled is returned by an ImageSource when the user dismissed the picker.
	ErrPickCancelled = errors.New("media: image pick cancelled")
	// ErrUnsupportedImage is returned for content that is not a JPEG, PNG or WebP image.
	ErrUnsupportedImage = errors.New("media: unsupported image type")
	// ErrEmptyImage is returned for an asset without content.
	ErrEmptyImage = errors.New("media: empty image")
)

// MaxImageBytes bounds the size of an uploaded image.
const MaxImageBytes = 5 << 20

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// ImageAsset is the raw content of a picked image.
type ImageAsset struct {
	Name string
	Data []byte
}

// ImageSource is the platform picker. Implementations must honour ctx.
type ImageSource interface {
	Pick(ctx context.Context) (ImageAsset, error)
}

// ImageSourceFunc adapts a function to ImageSource.
type ImageSourceFunc func(ctx context.Context) (ImageAsset, error)

// Pick calls f.
func (f ImageSourceFunc) Pick(ctx context.Context) (ImageAsset, error) { return f(ctx) }

// DetectType sniffs the content type of asset and checks it is allowed.
func DetectType(asset ImageAsset) (string, error) {
	if len(asset.Data) == 0 {
		return "", ErrEmptyImage
	}
	if len(asset.Data) > MaxImageBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrUnsupportedImage, len(asset.Data), MaxImageBytes)
	}
	mtype := mimetype.Detect(asset.Data)
	for _, allowed := range allowedTypes {
		if mtype.Is(allowed) {
			return allowed, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mtype.String())
}

// DataURI encodes asset as a base64 data URI.
func DataURI(asset ImageAsset) (string, error) {
	mtype, err := DetectType(asset)
	if err != nil {
		return "", err
	}
	return "data:" + mtype + ";base64," + base64.StdEncoding.EncodeToString(asset.Data), nil
}

// PickDataURI asks source for an image and encodes it.
func PickDataURI(ctx context.Context, source ImageSource) (string, error) {
	if source == nil {
		return "", ErrPickCancelled
	}
	asset, err := source.Pick(ctx)
	if err != nil {
		return "", err
	}
	return DataURI(asset)
}
