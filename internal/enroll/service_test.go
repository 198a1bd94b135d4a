package enroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faceenroll/internal/directory"
)

const validPhoto = "data:image/jpeg;base64,/9j/4AA"

type fakeDirectory struct {
	users map[string]directory.User
	err   error
	calls int
}

func (f *fakeDirectory) Lookup(_ context.Context, iin string) (directory.User, error) {
	f.calls++
	if f.err != nil {
		return directory.User{}, f.err
	}
	u, ok := f.users[iin]
	if !ok {
		return directory.User{}, directory.ErrNotFound
	}
	return u, nil
}

type fakeBio struct {
	resp   json.RawMessage
	err    error
	calls  int
	userID int64
	photo  string
}

func (f *fakeBio) UpdateBio(_ context.Context, userID int64, photo string) (json.RawMessage, error) {
	f.calls++
	f.userID, f.photo = userID, photo
	return f.resp, f.err
}

func newTestService() (*Service, *fakeDirectory, *fakeBio) {
	dir := &fakeDirectory{users: map[string]directory.User{
		"123456789012": {UserID: 42, FirstName: "Ivan", LastName: "Petrov", MiddleName: "Ivanovich"},
	}}
	bio := &fakeBio{resp: json.RawMessage(`{"result":"ok"}`)}
	return NewService(dir, bio, nil, nil), dir, bio
}

func int64p(v int64) *int64 { return &v }

func TestUpdateFace_Success(t *testing.T) {
	svc, dir, bio := newTestService()

	resp, err := svc.UpdateFace(context.Background(), FaceRequest{IIN: " 123456789012 ", UserID: int64p(7), Photo: validPhoto})
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"ok"}`, string(resp))
	assert.Equal(t, int64(7), bio.userID)
	assert.Equal(t, "/9j/4AA=", bio.photo, "payload is sent padded")
	assert.Equal(t, 0, dir.calls, "explicit user id skips the directory")
}

func TestUpdateFace_ResolvesUserID(t *testing.T) {
	svc, dir, bio := newTestService()

	_, err := svc.UpdateFace(context.Background(), FaceRequest{IIN: "123456789012", Photo: validPhoto})
	require.NoError(t, err)
	assert.Equal(t, 1, dir.calls)
	assert.Equal(t, int64(42), bio.userID)
}

func TestUpdateFace_Validation(t *testing.T) {
	cases := []struct {
		req  FaceRequest
		want string
	}{
		{FaceRequest{Photo: validPhoto}, MsgIINRequired},
		{FaceRequest{IIN: "12345", Photo: validPhoto}, MsgIINInvalid},
		{FaceRequest{IIN: "12345678901a", Photo: validPhoto}, MsgIINInvalid},
		{FaceRequest{IIN: "123456789012"}, MsgPhotoRequired},
		{FaceRequest{IIN: "123456789012", Photo: "   "}, MsgPhotoRequired},
		{FaceRequest{IIN: "123456789012", Photo: "/9j/4AA="}, MsgInvalidImageFormat},
		{FaceRequest{IIN: "123456789012", Photo: "data:image/jpeg;base64,!!!!"}, MsgInvalidImageData},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			svc, _, bio := newTestService()
			_, err := svc.UpdateFace(context.Background(), tc.req)

			status, msg := Public(err)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tc.want, msg)
			assert.Zero(t, bio.calls)
		})
	}
}

func TestUpdateFace_UpstreamFailure(t *testing.T) {
	svc, _, bio := newTestService()
	bio.resp, bio.err = nil, errors.New("perco: empty result")

	_, err := svc.UpdateFace(context.Background(), FaceRequest{IIN: "123456789012", UserID: int64p(42), Photo: validPhoto})
	status, msg := Public(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, MsgBioUpdateFailed, msg)
}

func TestUpdateFace_UnknownIIN(t *testing.T) {
	svc, _, bio := newTestService()

	_, err := svc.UpdateFace(context.Background(), FaceRequest{IIN: "999999999999", Photo: validPhoto})
	status, msg := Public(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, MsgUserNotFound, msg)
	assert.Zero(t, bio.calls)
}

func TestLookupUser(t *testing.T) {
	svc, dir, _ := newTestService()
	ctx := context.Background()

	u, err := svc.LookupUser(ctx, "123456789012")
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.UserID)

	_, err = svc.LookupUser(ctx, "000000000000")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	dir.err = fmt.Errorf("staff lookup: %w", directory.ErrNoConnection)
	_, err = svc.LookupUser(ctx, "123456789012")
	var ce *ConnectionError
	require.ErrorAs(t, err, &ce)
	status, msg := Public(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, MsgStoreUnavailable, msg)

	dir.err = errors.New("table user doesn't exist")
	_, err = svc.LookupUser(ctx, "123456789012")
	status, msg = Public(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, MsgInternal, msg, "detail is not leaked")
}
