package media

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00")
)

func TestDataURIEncodesAllowedTypes(t *testing.T) {
	uri, err := DataURI(ImageAsset{Name: "a.png", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngHeader), uri)

	uri, err = DataURI(ImageAsset{Data: jpegHeader})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
}

func TestDataURIRejectsOtherContent(t *testing.T) {
	_, err := DataURI(ImageAsset{Name: "a.gif", Data: gifHeader})
	assert.True(t, errors.Is(err, ErrUnsupportedImage))

	_, err = DataURI(ImageAsset{Name: "notes.png", Data: []byte("just text")})
	assert.True(t, errors.Is(err, ErrUnsupportedImage))

	_, err = DataURI(ImageAsset{})
	assert.True(t, errors.Is(err, ErrEmptyImage))
}

func TestPickDataURI(t *testing.T) {
	source := ImageSourceFunc(func(ctx context.Context) (ImageAsset, error) {
		return ImageAsset{Data: pngHeader}, nil
	})
	uri, err := PickDataURI(context.Background(), source)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png"))

	cancelled := ImageSourceFunc(func(ctx context.Context) (ImageAsset, error) {
		return ImageAsset{}, ErrPickCancelled
	})
	_, err = PickDataURI(context.Background(), cancelled)
	assert.ErrorIs(t, err, ErrPickCancelled)

	_, err = PickDataURI(context.Background(), nil)
	assert.ErrorIs(t, err, ErrPickCancelled)
}
