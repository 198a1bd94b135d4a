package enroll

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidIIN(t *testing.T) {
	valid := []string{"123456789012", "000000000000", "990101300123"}
	for _, s := range valid {
		assert.True(t, ValidIIN(s), s)
	}
	invalid := []string{"", "12345", "12345678901a", "1234567890123", "12345678901", " 23456789012", "١٢٣٤٥٦٧٨٩٠١٢", "12345678901-"}
	for _, s := range invalid {
		assert.False(t, ValidIIN(s), s)
	}
}

func TestExtractBase64(t *testing.T) {
	assert.Equal(t, "QUJD", ExtractBase64("data:image/png;base64,QUJD"))
	assert.Equal(t, "QUJD", ExtractBase64("QUJD"))
	assert.Equal(t, "QU,JD", ExtractBase64("data:image/png;base64,QU,JD"), "only the first comma splits")
	assert.Equal(t, "", ExtractBase64("data:image/png;base64,"))
}

func TestPadBase64_RoundTrip(t *testing.T) {
	for n := 1; n <= 32; n++ {
		raw := make([]byte, n)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		encoded := base64.StdEncoding.EncodeToString(raw)
		stripped := strings.TrimRight(encoded, "=")

		padded := PadBase64(stripped)
		assert.Equal(t, encoded, padded, "len %d", n)

		decoded, err := base64.StdEncoding.Strict().DecodeString(padded)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(raw, decoded), "len %d", n)
	}
}

func TestPadBase64_NoopWhenAligned(t *testing.T) {
	assert.Equal(t, "QUJD", PadBase64("QUJD"))
	assert.Equal(t, "", PadBase64(""))
}

func TestDecodePhoto(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}
	encoded := base64.StdEncoding.EncodeToString(jpeg)

	t.Run("valid", func(t *testing.T) {
		p, err := DecodePhoto("data:image/jpeg;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, encoded, p.Base64)
		assert.Equal(t, len(jpeg), p.Size)
	})

	t.Run("missing padding repaired", func(t *testing.T) {
		p, err := DecodePhoto("data:image/jpeg;base64," + strings.TrimRight(encoded, "="))
		require.NoError(t, err)
		assert.Equal(t, encoded, p.Base64)
	})

	t.Run("prefix required even for valid payload", func(t *testing.T) {
		for _, in := range []string{encoded, "data:text/plain;base64," + encoded, "DATA:IMAGE/jpeg;base64," + encoded} {
			_, err := DecodePhoto(in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve, in)
			assert.Equal(t, MsgInvalidImageFormat, ve.Message)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := DecodePhoto("data:image/jpeg;base64,")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, MsgInvalidImageFormat, ve.Message)
	})

	t.Run("garbage payload", func(t *testing.T) {
		for _, in := range []string{"data:image/jpeg;base64,@@@@", "data:image/jpeg;base64,QUJDR"} {
			_, err := DecodePhoto(in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve, in)
			assert.Equal(t, MsgInvalidImageData, ve.Message)
		}
	})

	t.Run("non-zero trailing bits rejected", func(t *testing.T) {
		_, err := DecodePhoto("data:image/jpeg;base64,QR")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, MsgInvalidImageData, ve.Message)

		p, err := DecodePhoto("data:image/jpeg;base64,QQ")
		require.NoError(t, err)
		assert.Equal(t, "QQ==", p.Base64)
	})

	t.Run("no comma uses whole string", func(t *testing.T) {
		_, err := DecodePhoto("data:image/jpeg")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, MsgInvalidImageData, ve.Message)
	})
}
