// Package datauri parses inline base64 images of the form data:image/png;base64,....
package datauri

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// MaxImageBytes is the largest decoded inline image accepted for uploads.
const MaxImageBytes = 2 << 20

var (
	ErrNotDataURI = errors.New("not a data: URI")
	ErrNotBase64  = errors.New("data URI is not base64 encoded")
	ErrNotImage   = errors.New("data URI does not contain a supported image")
	ErrTooLarge   = fmt.Errorf("image exceeds %d MB", MaxImageBytes>>20)
)

// Image is a decoded inline image.
type Image struct {
	MIMEType string
	Format   string // as reported by image.DecodeConfig
	Width    int
	Height   int
	Data     []byte
}

func IsDataURI(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:")
}

// Parse splits a base64 data URI into its media type and decoded bytes.
func Parse(uri string) (mimeType string, data []byte, err error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	params := strings.Split(meta, ";")
	if params[len(params)-1] != "base64" {
		return "", nil, ErrNotBase64
	}
	mimeType = params[0]
	if mimeType == "" {
		mimeType = "text/plain"
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some encoders drop padding
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrNotBase64, err)
		}
	}
	return mimeType, data, nil
}

// ParseImage parses uri and checks that it holds a decodable image no larger than MaxImageBytes.
func ParseImage(uri string) (*Image, error) {
	mimeType, data, err := Parse(uri)
	if err != nil {
		return nil, err
	}
	return DecodeImage(mimeType, data)
}

// DecodeImage checks raw bytes the same way ParseImage checks a data URI. An empty mimeType is
// derived from the detected format.
func DecodeImage(mimeType string, data []byte) (*Image, error) {
	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}
	if mimeType != "" && !strings.HasPrefix(mimeType, "image/") {
		return nil, ErrNotImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if mimeType == "" {
		mimeType = "image/" + format
	}
	return &Image{MIMEType: mimeType, Format: format, Width: cfg.Width, Height: cfg.Height, Data: data}, nil
}

// Encode builds a base64 data URI.
func Encode(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
