package imageedit

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// GetImageBytes - encodes the image as png, jpeg, tiff or bmp
func GetImageBytes(img image.Image, imgFormat string) ([]byte, error) {
	var err error
	var b bytes.Buffer
	writer := bufio.NewWriter(&b)

	switch imgFormat {
	case "png":
		err = png.Encode(writer, img)
	case "jpeg":
		err = jpeg.Encode(writer, img, &jpeg.Options{Quality: 90})
	case "tiff":
		err = tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case "bmp":
		err = bmp.Encode(writer, img)
	default:
		err = fmt.Errorf("unexpected image format: %v", imgFormat)
	}

	if err != nil {
		return nil, err
	}

	err = writer.Flush()
	if err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// FormatFromPath - image format to write for a file name, from its extension
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".tif", ".tiff":
		return "tiff", nil
	case ".bmp":
		return "bmp", nil
	}
	return "", fmt.Errorf("unknown image file extension: \"%v\" in %v", ext, path)
}

// GetImageBytesForPath - encodes the image in the format implied by the file name
func GetImageBytesForPath(img image.Image, path string) ([]byte, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return GetImageBytes(img, format)
}
