package service

import (
	"bytes"
	"concept_review_backend/internal/config"
	"concept_review_backend/internal/util"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestImageService(t *testing.T, maxWidth int) (*ImageService, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}})
	require.NoError(t, err)

	svc := NewImageService(storage, config.UploadConfig{MaxSizeMB: 10, JPEGQuality: 85, MaxWidth: maxWidth}, testLoc)
	// 2025-03-12 10:00 (UTC+8) 星期三
	svc.now = fixedNow(time.Date(2025, 3, 12, 2, 0, 0, 0, time.UTC))
	return svc, dir
}

func TestGroupOptions(t *testing.T) {
	assert.Len(t, GroupOptions(time.Monday), 7)
	assert.Len(t, GroupOptions(time.Sunday), 7)

	tuesday := GroupOptions(time.Tuesday)
	require.Len(t, tuesday, 8)
	assert.Equal(t, GroupOption{Value: "1", Label: "第一組"}, tuesday[0])
	assert.Equal(t, GroupOption{Value: "8", Label: "第八組"}, tuesday[7])
}

func TestImageFilename(t *testing.T) {
	assert.Equal(t, "group-3-5.jpeg", ImageFilename(time.Wednesday, "5"))
	assert.Equal(t, "group-0-A.jpeg", ImageFilename(time.Sunday, "A"))
}

func TestValidateGroup(t *testing.T) {
	g, err := ValidateGroup(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, "3", g)

	for _, bad := range []string{"", "  ", "../etc", "a/b", "a b"} {
		_, err := ValidateGroup(bad)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, bad)
	}
}

func TestConvertToJPEG(t *testing.T) {
	out, err := ConvertToJPEG(pngBytes(t, 40, 20), "image/png", 90, 0)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestConvertToJPEGFlattensTransparency(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 16, 16))))

	out, err := ConvertToJPEG(buf.Bytes(), "image/png", 90, 0)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	r, g, b, _ := img.At(8, 8).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestConvertToJPEGResizes(t *testing.T) {
	out, err := ConvertToJPEG(pngBytes(t, 200, 100), "image/png", 80, 50)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())
}

func TestConvertToJPEGRejectsGarbage(t *testing.T) {
	_, err := ConvertToJPEG([]byte("not an image"), "image/png", 80, 0)
	assert.Error(t, err)
}

func TestImageUploadAndFind(t *testing.T) {
	svc, dir := newTestImageService(t, 0)
	ctx := context.Background()

	assert.Equal(t, time.Wednesday, svc.Today())

	res, err := svc.Upload(ctx, pngBytes(t, 30, 30), "image/png", "4")
	require.NoError(t, err)
	assert.Equal(t, "group-3-4.jpeg", res.Filename)
	assert.Equal(t, "/uploads/group-3-4.jpeg", res.URL)
	assert.Equal(t, "png", res.OriginalFormat)
	assert.Contains(t, res.OriginalSize, " KB")

	_, err = os.Stat(filepath.Join(dir, "group-3-4.jpeg"))
	require.NoError(t, err)

	info, err := svc.Find(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, res.URL, info.URL)

	_, err = svc.Find(ctx, "5")
	assert.ErrorIs(t, err, util.ErrImageNotFound)

	// 同组再次上传覆盖原文件
	_, err = svc.Upload(ctx, pngBytes(t, 10, 10), "image/png", "4")
	require.NoError(t, err)

	blobs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Equal(t, "group-3-4.jpeg", blobs[0].Name)
}

func TestImageUploadRejectsNonImage(t *testing.T) {
	svc, _ := newTestImageService(t, 0)

	_, err := svc.Upload(context.Background(), []byte("%PDF-1.4 hello"), "image/png", "1")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, util.ErrNotAnImage)

	_, err = svc.Upload(context.Background(), pngBytes(t, 5, 5), "image/png", "../1")
	assert.ErrorAs(t, err, &verr)
}
