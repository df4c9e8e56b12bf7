package utils

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImageType(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.gif"} {
		assert.NoError(t, ValidateImageType(name), name)
	}
	for _, name := range []string{"a.bmp", "b.svg", "noext", "c.png.exe"} {
		assert.Error(t, ValidateImageType(name), name)
	}
}

func TestPhotoStore_SaveAndRemove(t *testing.T) {
	store := NewPhotoStore(filepath.Join(t.TempDir(), "uploads"))

	var src bytes.Buffer
	require.NoError(t, jpeg.Encode(&src, image.NewRGBA(image.Rect(0, 0, 1024, 256)), nil))

	url, err := store.SaveProfilePhoto("owner1", "Photo.JPG", &src)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/owner1-"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	path := filepath.Join(store.Dir(), filepath.Base(url))
	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 512, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())

	require.NoError(t, store.Remove(url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing twice is not an error
	assert.NoError(t, store.Remove(url))
}

func TestPhotoStore_RejectsNonImage(t *testing.T) {
	store := NewPhotoStore(t.TempDir())

	_, err := store.SaveProfilePhoto("owner1", "fake.png", strings.NewReader("not an image"))
	assert.Error(t, err)
}
