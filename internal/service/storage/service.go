package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"sbir-marketplace/internal/config"
	"sbir-marketplace/internal/domain"
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ObjectStore is the part of *minio.Client the photo store uses.
type ObjectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type Service interface {
	// UploadListingPhoto sniffs, stores and returns the public URL of a listing photo.
	UploadListingPhoto(ctx context.Context, listingID uuid.UUID, reader io.Reader) (string, error)
	// RemoveByURL deletes the object behind a URL previously returned by
	// UploadListingPhoto. URLs outside the bucket are ignored.
	RemoveByURL(ctx context.Context, photoURL string) error
}

type service struct {
	store  ObjectStore
	cfg    *config.Config
	logger zerolog.Logger
}

func NewService(store ObjectStore, cfg *config.Config, logger zerolog.Logger) Service {
	return &service{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "storage_service").Logger(),
	}
}

func (s *service) UploadListingPhoto(ctx context.Context, listingID uuid.UUID, reader io.Reader) (string, error) {
	if s.store == nil {
		return "", domain.ErrStorageUnavailable
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(reader, s.cfg.MaxPhotoSize+1)); err != nil {
		return "", err
	}
	if int64(buf.Len()) > s.cfg.MaxPhotoSize {
		return "", domain.ErrPhotoTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	contentType := strings.ToLower(strings.SplitN(mime.String(), ";", 2)[0])
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", domain.ErrPhotoTypeInvalid
	}

	objectName := fmt.Sprintf("listings/%s/%s%s", listingID, uuid.New(), ext)
	_, err := s.store.PutObject(ctx, s.cfg.MinIOBucket, objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len()), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}

	return s.publicURL(objectName), nil
}

func (s *service) RemoveByURL(ctx context.Context, photoURL string) error {
	if s.store == nil {
		return domain.ErrStorageUnavailable
	}

	objectName, ok := s.objectName(photoURL)
	if !ok {
		s.logger.Debug().Str("url", photoURL).Msg("photo url is not in the bucket, nothing to remove")
		return nil
	}
	return s.store.RemoveObject(ctx, s.cfg.MinIOBucket, objectName, minio.RemoveObjectOptions{})
}

func (s *service) publicURL(objectName string) string {
	scheme := "http"
	if s.cfg.MinIOPublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.MinIOPublicEndpoint, s.cfg.MinIOBucket, objectName)
}

func (s *service) objectName(photoURL string) (string, bool) {
	parsed, err := url.Parse(photoURL)
	if err != nil {
		return "", false
	}
	prefix := "/" + s.cfg.MinIOBucket + "/"
	if parsed.Host != s.cfg.MinIOPublicEndpoint || !strings.HasPrefix(parsed.Path, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(parsed.Path, prefix)
	return name, name != ""
}
