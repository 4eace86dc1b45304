package utils

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

type ImageDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func GetImageDimensions(data []byte) (*ImageDimensions, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return &ImageDimensions{
		Width:  config.Width,
		Height: config.Height,
	}, nil
}

// ResizeImage scales img down to fit maxWidth x maxHeight, keeping the
// aspect ratio. Smaller images are returned unchanged.
func ResizeImage(img image.Image, maxWidth, maxHeight uint) image.Image {
	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	if width <= maxWidth && height <= maxHeight {
		return img
	}

	widthRatio := float64(maxWidth) / float64(width)
	heightRatio := float64(maxHeight) / float64(height)

	var newWidth, newHeight uint
	if widthRatio < heightRatio {
		newWidth = maxWidth
		newHeight = uint(float64(height) * widthRatio)
	} else {
		newWidth = uint(float64(width) * heightRatio)
		newHeight = maxHeight
	}

	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
}

// GenerateThumbnail returns the encoded thumbnail bytes. PNG input stays
// PNG, everything else is written as JPEG.
func GenerateThumbnail(data []byte, filename string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	thumb := ResizeImage(img, ThumbnailWidth, ThumbnailHeight)

	format := "jpeg"
	if strings.ToLower(filepath.Ext(filename)) == ".png" {
		format = "png"
	}

	var buf bytes.Buffer
	if err := EncodeImage(thumb, format, &buf, 85); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func EncodeImage(img image.Image, format string, writer *bytes.Buffer, quality int) error {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(writer, img)
	default:
		return errors.New("unsupported image format")
	}
}
