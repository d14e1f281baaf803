package identify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	// Decoders registered with image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/fyrsmithlabs/pestid/internal/ai"
)

// Image is a decoded upload with its sniffed properties.
type Image struct {
	Data     []byte
	MIMEType string
	// Format is the decoder name reported by image.DecodeConfig.
	Format string
	Width  int
	Height int
}

// AI returns the model attachment for img.
func (img Image) AI() *ai.Image {
	return &ai.Image{Data: img.Data, MIMEType: img.MIMEType}
}

// ParseImage decodes a data URL (data:image/jpeg;base64,...) or bare base64
// string. Everything up to the first comma is treated as the data URL header.
func ParseImage(input string) (Image, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	var declared string
	payload := input
	if i := strings.IndexByte(input, ','); i >= 0 {
		declared = mimeFromHeader(input[:i])
		payload = input[i+1:]
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return FromBytes(data, declared)
}

// FromBytes validates raw image bytes. declared may be empty, in which case
// the MIME type is taken from the sniffed format.
func FromBytes(data []byte, declared string) (Image, error) {
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return Image{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, declared)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	mimeType := declared
	if mimeType == "" {
		mimeType = "image/" + format
	}

	return Image{
		Data:     data,
		MIMEType: mimeType,
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// mimeFromHeader extracts "image/png" from "data:image/png;base64".
func mimeFromHeader(header string) string {
	header = strings.TrimPrefix(header, "data:")
	if i := strings.IndexByte(header, ';'); i >= 0 {
		header = header[:i]
	}
	return strings.ToLower(strings.TrimSpace(header))
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)

	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
