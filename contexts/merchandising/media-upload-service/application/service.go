package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	domainerrors "vitrine/contexts/merchandising/media-upload-service/domain/errors"
	"vitrine/contexts/merchandising/media-upload-service/domain/imagemeta"
	"vitrine/contexts/merchandising/media-upload-service/ports"
)

const (
	MaxImageBytes = 5 << 20
	MaxVideoBytes = 10 << 20
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var videoExtensions = map[string]string{
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

type Service struct {
	Blobs  ports.BlobStore
	Clock  ports.Clock
	Logger *slog.Logger
}

// Upload validates the media, derives its content hash and pixel dimensions,
// and stores the blob. Dimension parse failure falls back to a fixed default;
// MIME and size violations reject the upload.
func (s Service) Upload(ctx context.Context, input ports.UploadInput) (ports.UploadResult, error) {
	if len(input.Data) == 0 {
		return ports.UploadResult{}, domainerrors.ErrInvalidRequest
	}

	mimeType := strings.ToLower(strings.TrimSpace(input.MIMEType))
	ext, isImage := imageExtensions[mimeType]
	if !isImage {
		var isVideo bool
		ext, isVideo = videoExtensions[mimeType]
		if !isVideo {
			return ports.UploadResult{}, domainerrors.ErrUploadRejected
		}
	}

	limit := MaxVideoBytes
	if isImage {
		limit = MaxImageBytes
	}
	if len(input.Data) > limit {
		return ports.UploadResult{}, domainerrors.ErrUploadRejected
	}

	dims := imagemeta.Fallback
	if isImage {
		parsed, err := imagemeta.Parse(input.Data)
		if err != nil {
			s.logger().Warn("media dimension parse failed, using fallback",
				"event", "media_dimension_parse_failed",
				"module", "merchandising/media-upload-service",
				"layer", "application",
				"filename", strings.TrimSpace(input.Filename),
				"mime_type", mimeType,
				"error", err.Error(),
			)
		} else {
			dims = parsed
		}
	}

	sum := sha256.Sum256(input.Data)
	hash := hex.EncodeToString(sum[:])

	url, err := s.Blobs.Put(ctx, ports.Blob{
		Ref:       hash + ext,
		MIMEType:  mimeType,
		Data:      input.Data,
		CreatedAt: s.now(),
	})
	if err != nil {
		return ports.UploadResult{}, err
	}

	s.logger().Info("media uploaded",
		"event", "media_uploaded",
		"module", "merchandising/media-upload-service",
		"layer", "application",
		"hash", hash,
		"mime_type", mimeType,
		"bytes", len(input.Data),
	)
	return ports.UploadResult{
		URL:      url,
		Width:    dims.Width,
		Height:   dims.Height,
		MIMEType: mimeType,
		Hash:     hash,
		Size:     int64(len(input.Data)),
	}, nil
}

// Fetch returns a stored blob for serving.
func (s Service) Fetch(ctx context.Context, ref string) (ports.Blob, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ports.Blob{}, domainerrors.ErrInvalidRequest
	}
	return s.Blobs.Get(ctx, ref)
}

func (s Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
