package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"
)

var (
	errBadUserID = errors.New("user_id must be an integer")
	errEmptyBody = errors.New("empty json body")
)

// userID accepts a JSON number or a numeric string; null and absence leave it unset.
type userID struct {
	set   bool
	value int64
}

func (u *userID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return errBadUserID
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
	} else {
		s = string(b)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return errBadUserID
	}
	if v == 0 {
		return nil
	}
	u.set, u.value = true, v
	return nil
}

func (u userID) ptr() *int64 {
	if !u.set {
		return nil
	}
	v := u.value
	return &v
}

type lookupRequest struct {
	IIN string `json:"iin"`
}

type faceUpdateRequest struct {
	IIN   string `json:"iin"`
	Photo string `json:"photo"`
}

type submitFaceRequest struct {
	IIN    string `json:"iin"`
	UserID userID `json:"user_id"`
	Photo  string `json:"photo"`
}

// decodeStrict reads exactly one JSON object with no unknown fields. A null
// or empty object counts as no body. The first return distinguishes a bad
// user_id from any other malformed body.
func decodeStrict(r io.Reader, dst any) (badUserID bool, err error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Is(err, errBadUserID), err
	}
	if dec.More() {
		return false, errors.New("trailing data after json object")
	}
	if reflect.ValueOf(dst).Elem().IsZero() {
		return false, errEmptyBody
	}
	return false, nil
}
