// Package imagestore turns a submitted photo into a durable URL by trying
// upload strategies in a fixed order.
package imagestore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// ErrEmptyPhoto is returned when a payload decodes to zero bytes.
var ErrEmptyPhoto = errors.New("photo payload is empty")

// Photo is a decoded image ready for upload.
// Base64 never carries a data: URI prefix.
type Photo struct {
	Data     []byte
	Base64   string
	MimeType string
}

// DecodePhoto strips an optional "data:<mime>;base64," prefix and decodes the payload.
// An empty input yields (nil, nil).
func DecodePhoto(raw string) (*Photo, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	mimeType := ""
	if strings.HasPrefix(raw, "data:") {
		comma := strings.IndexByte(raw, ',')
		if comma < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		meta := raw[len("data:"):comma]
		if semi := strings.IndexByte(meta, ';'); semi >= 0 {
			meta = meta[:semi]
		}
		mimeType = meta
		raw = raw[comma+1:]
	}

	raw = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, raw)

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(raw, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("invalid base64 photo: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, ErrEmptyPhoto
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return &Photo{Data: data, Base64: base64.StdEncoding.EncodeToString(data), MimeType: mimeType}, nil
}

// Filename builds stock_{barcode}_{YYYYMMDD_HHMMSS}.jpg from the processing time.
func Filename(barcode string, at time.Time) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, strings.TrimSpace(barcode))
	return fmt.Sprintf("stock_%s_%s.jpg", safe, at.Format("20060102_150405"))
}

// MimeTypeFor guesses a MIME type from the filename extension, defaulting to image/jpeg.
func MimeTypeFor(filename string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); t != "" {
		if semi := strings.IndexByte(t, ';'); semi >= 0 {
			t = t[:semi]
		}
		return t
	}
	return "image/jpeg"
}
