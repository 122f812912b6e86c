package assets

import (
	"encoding/base64"
	"errors"
	"mime"
	"net/url"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data URI")

// DataURI is a decoded data: reference.
type DataURI struct {
	ContentType string
	Data        []byte
}

func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// ParseDataURI decodes data:[<mediatype>][;base64],<data>.
func ParseDataURI(ref string) (*DataURI, error) {
	if !IsDataURI(ref) {
		return nil, ErrInvalidDataURI
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, ErrInvalidDataURI
	}

	isBase64 := strings.HasSuffix(header, ";base64")
	header = strings.TrimSuffix(header, ";base64")

	contentType := "text/plain"
	if header != "" {
		mediaType, _, err := mime.ParseMediaType(header)
		if err != nil {
			return nil, ErrInvalidDataURI
		}
		contentType = mediaType
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, ErrInvalidDataURI
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, ErrInvalidDataURI
		}
		data = []byte(unescaped)
	}

	if len(data) == 0 {
		return nil, ErrInvalidDataURI
	}
	return &DataURI{ContentType: contentType, Data: data}, nil
}

// Extension returns a file extension for the content type, ".bin" when
// nothing better is known.
func (d *DataURI) Extension() string {
	switch d.ContentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if exts, _ := mime.ExtensionsByType(d.ContentType); len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
