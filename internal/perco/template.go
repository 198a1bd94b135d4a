package perco

import (
	"bytes"
	"encoding/json"
)

const (
	// bioTypeFace is the "type" query value Perco uses for face biometrics.
	bioTypeFace = 2
	// templateTypePhoto marks a template that carries a photo instead of a vendor vector.
	templateTypePhoto = 3

	faceTemplateName = "Face #1"
)

// FaceTemplate is the biometric record Perco stores per user. Only one
// primary face (number 0) is ever written.
type FaceTemplate struct {
	Name         string `json:"name"`
	TemplateType int    `json:"templateType"`
	Number       int    `json:"number"`
	Template     string `json:"template"`
}

// NewFaceTemplate wraps a base64 JPEG payload into the primary face record.
func NewFaceTemplate(base64Photo string) FaceTemplate {
	return FaceTemplate{
		Name:         faceTemplateName,
		TemplateType: templateTypePhoto,
		Number:       0,
		Template:     "data:image/jpeg;base64," + base64Photo,
	}
}

// isEmptyJSON reports whether body decodes to a zero-ish value:
// null, false, 0, "", {} or [].
func isEmptyJSON(body []byte) bool {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
