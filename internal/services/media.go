package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"caravanshare/internal/models"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/storage"
)

// FileUpload is one image received from a multipart form.
type FileUpload struct {
	Filename string
	Data     []byte
}

func (f FileUpload) validate() error {
	if !utils.IsImageFile(f.Filename) {
		return utils.NewValidationError(fmt.Sprintf("%s is not a supported image type", f.Filename))
	}
	if len(f.Data) == 0 {
		return utils.NewValidationError(fmt.Sprintf("%s is empty", f.Filename))
	}
	if len(f.Data) > utils.MaxImageSize {
		return utils.NewValidationError(fmt.Sprintf("%s exceeds the %d byte limit", f.Filename, utils.MaxImageSize))
	}
	return nil
}

type mediaStore struct {
	storage storage.Provider
	logger  *logger.Logger
}

func (m *mediaStore) upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	resp, err := m.storage.Upload(ctx, &storage.UploadRequest{
		Key:          key,
		Reader:       bytes.NewReader(data),
		ContentType:  contentType,
		Size:         int64(len(data)),
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return "", &utils.AppError{Kind: utils.KindInternal, Message: utils.ErrFileUploadFailed, Err: err}
	}
	return resp.URL, nil
}

// storePhoto uploads the original image and a resized thumbnail. Formats
// that cannot be decoded reuse the original as their thumbnail.
func (m *mediaStore) storePhoto(ctx context.Context, key string, file FileUpload) (models.Photo, error) {
	url, err := m.upload(ctx, key, utils.GetContentType(file.Filename), file.Data)
	if err != nil {
		return models.Photo{}, err
	}
	photo := models.Photo{URL: url, ThumbnailURL: url}

	thumb, err := utils.GenerateThumbnail(file.Data, file.Filename)
	if err != nil {
		m.logger.WithError(err).WithField("key", key).Warn("Skipping thumbnail")
		return photo, nil
	}

	thumbKey := utils.ThumbnailKey(key)
	thumbType := "image/png"
	if utils.GetFileExtension(file.Filename) != ".png" {
		thumbKey = strings.TrimSuffix(thumbKey, filepath.Ext(thumbKey)) + ".jpg"
		thumbType = "image/jpeg"
	}

	thumbURL, err := m.upload(ctx, thumbKey, thumbType, thumb)
	if err != nil {
		m.logger.WithError(err).WithField("key", thumbKey).Warn("Failed to upload thumbnail")
		return photo, nil
	}
	photo.ThumbnailURL = thumbURL
	return photo, nil
}
