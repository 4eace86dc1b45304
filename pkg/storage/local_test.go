package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := store.Upload(ctx, &UploadRequest{
		Key:         "caravans/abc/photo.jpg",
		Reader:      strings.NewReader("jpeg-bytes"),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/uploads/caravans/abc/photo.jpg", resp.URL)
	assert.Equal(t, int64(len("jpeg-bytes")), resp.Size)

	data, err := os.ReadFile(filepath.Join(dir, "caravans", "abc", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	exists, err := store.FileExists(ctx, "caravans/abc/photo.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "caravans/abc/photo.jpg"))
	exists, err = store.FileExists(ctx, "caravans/abc/photo.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "caravans/abc/photo.jpg"))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), &UploadRequest{
		Key:    "../outside.txt",
		Reader: strings.NewReader("x"),
	})
	assert.Error(t, err)
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "ftp"})
	assert.Error(t, err)
}
