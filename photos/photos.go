// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package photos

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
)

var (
	ErrMissingPhoto = errors.New("face photo required for voting")
	ErrDecode       = errors.New("photo is not valid encoded image data")
)

// acceptedTypes maps data-URI MIME types to the image format they must decode as.
var acceptedTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/gif":  "gif",
}

var extensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
}

// Photo is a decoded, validated image payload.
type Photo struct {
	Data   []byte
	Format string // png, jpeg or gif
	Width  int
	Height int
}

// Ext is the file extension for the photo's format.
func (p *Photo) Ext() string {
	return extensions[p.Format]
}

// DecodeDataURI parses "data:<mime>;base64,<payload>" as captured by the
// browser and checks that the payload is a real image of the declared type.
func DecodeDataURI(field string) (*Photo, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, ErrMissingPhoto
	}

	header, payload, ok := strings.Cut(field, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return nil, fmt.Errorf("%w: not a data URI", ErrDecode)
	}

	mediaType, isBase64 := strings.CutSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !isBase64 {
		return nil, fmt.Errorf("%w: payload is not base64", ErrDecode)
	}

	want, ok := acceptedTypes[strings.ToLower(mediaType)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrDecode, mediaType)
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, ErrMissingPhoto
	}

	// The header alone is not enough: a truncated payload still has one.
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if format != want {
		return nil, fmt.Errorf("%w: declared %s but found %s", ErrDecode, mediaType, format)
	}

	bounds := img.Bounds()
	return &Photo{Data: data, Format: format, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// decodeBase64 accepts standard and URL-safe alphabets, padded or not.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, enc := range encodings {
		var data []byte
		if data, err = enc.DecodeString(s); err == nil {
			return data, nil
		}
	}
	return nil, err
}
