package docsniff

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want DocType
	}{
		{"pdf", []byte("%PDF-1.7 rest of header"), TypePDF},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, TypeJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00}, TypePNG},
		{"webp", append([]byte("RIFF\x10\x00\x00\x00"), []byte("WEBPVP8 ")...), TypeWEBP},
		{"ole doc", []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1, 0x00}, TypeDoc},
		{"docx zip", []byte{'P', 'K', 0x03, 0x04, 0x14, 0x00}, TypeDocx},
		{"plain text", []byte("Hemoglobin: 9.8 g/dL\nWBC: 5.1"), TypeText},
		{"utf8 text", []byte("Blutzucker erhöht"), TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectHead(tt.head)
			require.NoError(t, err)
			require.Equal(t, tt.want, got.Type)
			require.True(t, Allowed(got.MIME))
		})
	}

	t.Run("empty head", func(t *testing.T) {
		_, err := DetectHead(nil)
		require.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("binary garbage", func(t *testing.T) {
		_, err := DetectHead([]byte{0x00, 0x01, 0x02, 0x03})
		require.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("text split mid rune", func(t *testing.T) {
		// a 512-byte read can cut a multi-byte rune; the tail is tolerated
		full := []byte("Ergebnis: erhö")
		got, err := DetectHead(full[:len(full)-1])
		require.NoError(t, err)
		require.Equal(t, TypeText, got.Type)
	})
}

func TestAllowed(t *testing.T) {
	require.True(t, Allowed("application/pdf"))
	require.True(t, Allowed("text/plain"))
	require.True(t, Allowed("application/msword"))
	require.True(t, Allowed("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	require.False(t, Allowed("application/zip"))
	require.False(t, Allowed("image/gif"))
	require.False(t, Allowed(""))
}

func TestMimeTypeFromHTTP(t *testing.T) {
	header := http.Header{}
	require.Equal(t, "", MimeTypeFromHTTP(header))

	header.Set("Content-Type", "text/plain; charset=utf-8")
	require.Equal(t, "text/plain", MimeTypeFromHTTP(header))

	header.Set("Content-Type", "application/pdf")
	require.Equal(t, "application/pdf", MimeTypeFromHTTP(header))
}
