package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sbir-marketplace/internal/config"
	"sbir-marketplace/internal/domain"
)

type mockObjectStore struct {
	mock.Mock
}

func (m *mockObjectStore) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *mockObjectStore) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Error(0)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func testConfig() *config.Config {
	return &config.Config{
		MinIOBucket:         "listing-photos",
		MinIOPublicEndpoint: "cdn.example.com",
		MinIOPublicUseSSL:   true,
		MaxPhotoSize:        1024,
	}
}

func TestUploadListingPhoto(t *testing.T) {
	ctx := context.Background()
	listingID := uuid.New()

	t.Run("Stores png under listing prefix", func(t *testing.T) {
		store := new(mockObjectStore)
		store.On("PutObject", ctx, "listing-photos",
			mock.MatchedBy(func(name string) bool {
				return strings.HasPrefix(name, "listings/"+listingID.String()+"/") && strings.HasSuffix(name, ".png")
			}),
			mock.Anything, int64(len(pngHeader)),
			minio.PutObjectOptions{ContentType: "image/png"},
		).Return(minio.UploadInfo{}, nil).Once()

		svc := NewService(store, testConfig(), zerolog.Nop())
		url, err := svc.UploadListingPhoto(ctx, listingID, bytes.NewReader(pngHeader))

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/listing-photos/listings/"))
		store.AssertExpectations(t)
	})

	t.Run("Rejects non image content", func(t *testing.T) {
		store := new(mockObjectStore)
		svc := NewService(store, testConfig(), zerolog.Nop())

		_, err := svc.UploadListingPhoto(ctx, listingID, strings.NewReader("definitely not a picture"))

		assert.ErrorIs(t, err, domain.ErrPhotoTypeInvalid)
		store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Rejects oversized upload", func(t *testing.T) {
		svc := NewService(new(mockObjectStore), testConfig(), zerolog.Nop())
		payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2048)...)

		_, err := svc.UploadListingPhoto(ctx, listingID, bytes.NewReader(payload))

		assert.ErrorIs(t, err, domain.ErrPhotoTooLarge)
	})

	t.Run("Storage not configured", func(t *testing.T) {
		svc := NewService(nil, testConfig(), zerolog.Nop())

		_, err := svc.UploadListingPhoto(ctx, listingID, bytes.NewReader(pngHeader))

		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})
}

func TestRemoveByURL(t *testing.T) {
	ctx := context.Background()
	store := new(mockObjectStore)
	store.On("RemoveObject", ctx, "listing-photos", "listings/abc/photo.png", minio.RemoveObjectOptions{}).Return(nil).Once()

	svc := NewService(store, testConfig(), zerolog.Nop())

	require.NoError(t, svc.RemoveByURL(ctx, "https://cdn.example.com/listing-photos/listings/abc/photo.png"))
	require.NoError(t, svc.RemoveByURL(ctx, "https://elsewhere.example.com/listing-photos/listings/abc/photo.png"))
	store.AssertExpectations(t)
}
