package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"flipquiz/internal/dataurl"

	"github.com/gin-gonic/gin"
)

var errImageTooLarge = fmt.Errorf("image must be %d bytes or smaller", maxImageBytes)

// readUploadedImage accepts a multipart file under field, falling back to a
// data URL in the form value of the same name.
func readUploadedImage(c *gin.Context, field string) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes*2)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile(field)
		if err == nil {
			if header.Size > maxImageBytes {
				return nil, "", errImageTooLarge
			}
			file, err := header.Open()
			if err != nil {
				return nil, "", err
			}
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
			if err != nil {
				return nil, "", err
			}
			if len(data) > maxImageBytes {
				return nil, "", errImageTooLarge
			}
			contentType := header.Header.Get("Content-Type")
			if !strings.HasPrefix(contentType, "image/") {
				contentType = http.DetectContentType(data)
			}
			return checkImage(data, contentType)
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, "", err
		}
	}
	return decodeImageData(c.PostForm(field))
}

func decodeImageData(data string) ([]byte, string, error) {
	decoded, contentType, err := dataurl.Decode(data)
	if err != nil {
		return nil, "", err
	}
	if len(decoded) > maxImageBytes {
		return nil, "", errImageTooLarge
	}
	return checkImage(decoded, contentType)
}

func checkImage(data []byte, contentType string) ([]byte, string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", errors.New("upload must be an image")
	}
	return data, contentType, nil
}
