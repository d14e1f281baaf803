package identify

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{G: 200, A: 255})
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func TestParseImage_DataURL(t *testing.T) {
	data := pngBytes(t)
	input := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	img, err := ParseImage(input)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Equal(t, data, img.Data)
}

func TestParseImage_DeclaredMIMEWins(t *testing.T) {
	// Browsers label camera captures image/jpeg regardless of encoder.
	input := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(pngBytes(t))

	img, err := ParseImage(input)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, "png", img.Format)
}

func TestParseImage_BareBase64(t *testing.T) {
	img, err := ParseImage(base64.StdEncoding.EncodeToString(pngBytes(t)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestParseImage_WrappedBase64(t *testing.T) {
	enc := base64.StdEncoding.EncodeToString(pngBytes(t))
	wrapped := enc[:10] + "\n" + enc[10:20] + "\r\n" + enc[20:]

	_, err := ParseImage("data:image/png;base64," + wrapped)
	require.NoError(t, err)
}

func TestParseImage_BMPViaXImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, testImage()))

	img, err := ParseImage(base64.StdEncoding.EncodeToString(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "bmp", img.Format)
	assert.Equal(t, "image/bmp", img.MIMEType)
}

func TestParseImage_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not base64", "data:image/png;base64,@@@not-base64@@@"},
		{"text payload", "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
		{"base64 of text", base64.StdEncoding.EncodeToString([]byte("definitely not an image"))},
		{"prefix only", "data:image/png;base64,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseImage(tt.input)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestFromBytes(t *testing.T) {
	img, err := FromBytes(pngBytes(t), "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)

	_, err = FromBytes(pngBytes(t), "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = FromBytes(nil, "image/png")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestImage_AI(t *testing.T) {
	img, err := FromBytes(pngBytes(t), "")
	require.NoError(t, err)

	att := img.AI()
	assert.Equal(t, img.Data, att.Data)
	assert.Equal(t, "image/png", att.MIMEType)
}
