package storage

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake-png"))

	tests := []struct {
		name    string
		uri     string
		wantExt string
		wantErr error
	}{
		{name: "png", uri: "data:image/png;base64," + payload, wantExt: "png"},
		{name: "jpeg maps to jpg", uri: "data:image/jpeg;base64," + payload, wantExt: "jpg"},
		{name: "missing prefix", uri: payload, wantErr: ErrInvalidImage},
		{name: "unsupported type", uri: "data:image/tiff;base64," + payload, wantErr: ErrInvalidImage},
		{name: "bad base64", uri: "data:image/png;base64,@@@", wantErr: ErrInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeDataURI(tt.uri)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, img.Extension)
			assert.Equal(t, []byte("fake-png"), img.Data)
		})
	}
}

func TestDecodeDataURITooLarge(t *testing.T) {
	payload := strings.Repeat("A", (MaxImageBytes/3+2)*4)
	_, err := DecodeDataURI("data:image/png;base64," + payload)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/media/recipes")
	require.NoError(t, err)

	img := &Image{Data: []byte("bytes"), Extension: "png", ContentType: "image/png"}
	url, err := SaveImage(context.Background(), store, img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/recipes/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	path := filepath.Join(dir, filepath.Base(url))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)

	require.NoError(t, store.Delete(context.Background(), url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Foreign URLs and already removed files are not errors.
	assert.NoError(t, store.Delete(context.Background(), "https://cdn.example.com/x.png"))
	assert.NoError(t, store.Delete(context.Background(), url))
}
