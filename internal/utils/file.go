package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func IsAllowedFileType(filename string, allowedTypes []string) bool {
	ext := strings.TrimPrefix(GetFileExtension(filename), ".")

	for _, allowedType := range allowedTypes {
		if ext == allowedType {
			return true
		}
	}

	return false
}

func IsImageFile(filename string) bool {
	return IsAllowedFileType(filename, AllowedImageTypes)
}

// CaravanPhotoKey builds caravans/<id>/<uuid>.<ext>.
func CaravanPhotoKey(caravanID, filename string) string {
	return fmt.Sprintf("caravans/%s/%s%s", caravanID, uuid.NewString(), GetFileExtension(filename))
}

func ProfileImageKey(userID, filename string) string {
	return fmt.Sprintf("users/%s/%s%s", userID, uuid.NewString(), GetFileExtension(filename))
}

// ThumbnailKey inserts a _thumb suffix before the extension.
func ThumbnailKey(key string) string {
	ext := filepath.Ext(key)
	return strings.TrimSuffix(key, ext) + "_thumb" + ext
}

func GetContentType(filename string) string {
	switch GetFileExtension(filename) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
