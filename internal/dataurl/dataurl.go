package dataurl

import (
	"encoding/base64"
	"errors"
	"strings"
)

const defaultContentType = "image/png"

var ErrEmpty = errors.New("no image data")

// Decode accepts either a full data URL or a bare base64 payload and returns
// the bytes with their declared content type (image/png when undeclared).
func Decode(data string) ([]byte, string, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, "", ErrEmpty
	}
	contentType := defaultContentType
	parts := strings.SplitN(data, ",", 2)
	if len(parts) == 2 {
		header := strings.TrimPrefix(parts[0], "data:")
		if !strings.HasSuffix(header, ";base64") {
			return nil, "", errors.New("image data must be base64 encoded")
		}
		if declared := strings.TrimSuffix(header, ";base64"); declared != "" {
			contentType = declared
		}
		data = parts[1]
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", err
	}
	if len(decoded) == 0 {
		return nil, "", ErrEmpty
	}
	return decoded, contentType, nil
}

func Encode(contentType string, image []byte) string {
	if len(image) == 0 {
		return ""
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)
}

func EncodePNG(image []byte) string {
	return Encode(defaultContentType, image)
}

// Extension maps an image content type to a file extension for blob paths.
func Extension(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
