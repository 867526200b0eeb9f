package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotImage is returned when dropped or pasted bytes are not an image.
var ErrNotImage = errors.New("not an image")

// EncodeImage turns raw image bytes into a data URI suitable for embedding
// as ![Image](...). The MIME type is sniffed from the content.
func EncodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNotImage
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("encode image (%s): %w", mt.String(), ErrNotImage)
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURI returns the payload of a base64 data URI. Plain base64
// without a "data:" prefix is accepted too.
func DecodeDataURI(uri string) ([]byte, error) {
	encoded := uri
	if strings.HasPrefix(uri, "data:") {
		comma := strings.IndexByte(uri, ',')
		if comma < 0 {
			return nil, fmt.Errorf("decode data uri: missing payload")
		}
		encoded = uri[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return data, nil
}
