package enroll

import (
	"encoding/base64"
	"strings"
)

const (
	iinLength     = 12
	dataURLPrefix = "data:image/"
)

// Photo is a validated photo payload.
type Photo struct {
	// Base64 is the padded base64 payload without the data URL header.
	Base64 string
	// Size is the decoded length in bytes, kept for diagnostics.
	Size int
}

// ValidIIN reports whether s is exactly twelve ASCII digits.
func ValidIIN(s string) bool {
	if len(s) != iinLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ExtractBase64 returns the part of a data URL after the first comma, or the
// whole string when there is no comma.
func ExtractBase64(dataURL string) string {
	if _, payload, ok := strings.Cut(dataURL, ","); ok {
		return payload
	}
	return dataURL
}

// PadBase64 appends '=' until the length is a multiple of four.
func PadBase64(s string) string {
	if rem := len(s) % 4; rem != 0 {
		return s + strings.Repeat("=", 4-rem)
	}
	return s
}

// DecodePhoto validates a data URL photo and decodes its payload.
func DecodePhoto(dataURL string) (Photo, error) {
	if !strings.HasPrefix(dataURL, dataURLPrefix) {
		return Photo{}, Validation(MsgInvalidImageFormat)
	}
	payload := ExtractBase64(dataURL)
	if payload == "" {
		return Photo{}, Validation(MsgInvalidImageFormat)
	}
	payload = PadBase64(payload)
	// Strict also rejects non-zero trailing bits; only canonical encodings pass.
	raw, err := base64.StdEncoding.Strict().DecodeString(payload)
	if err != nil {
		return Photo{}, &ValidationError{Message: MsgInvalidImageData, cause: err}
	}
	return Photo{Base64: payload, Size: len(raw)}, nil
}
