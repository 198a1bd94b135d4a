package enroll

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"faceenroll/internal/directory"
	"faceenroll/internal/logging"
	"faceenroll/internal/metrics"
)

// Directory resolves an IIN to a user record.
type Directory interface {
	Lookup(ctx context.Context, iin string) (directory.User, error)
}

// Biometrics writes face templates to the access-control system.
type Biometrics interface {
	UpdateBio(ctx context.Context, userID int64, base64Photo string) (json.RawMessage, error)
}

// FaceRequest is one face submission.
type FaceRequest struct {
	IIN string
	// UserID is the Perco user id. When nil it is resolved from the directory.
	UserID *int64
	Photo  string
}

// Service validates face submissions and pushes them to Perco.
type Service struct {
	dir     Directory
	bio     Biometrics
	log     logging.Logger
	metrics *metrics.Metrics
}

// NewService wires the directory and Perco clients.
func NewService(dir Directory, bio Biometrics, log logging.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{dir: dir, bio: bio, log: log, metrics: m}
}

// LookupUser resolves iin through the directory.
func (s *Service) LookupUser(ctx context.Context, iin string) (directory.User, error) {
	iin = strings.TrimSpace(iin)
	if iin == "" {
		return directory.User{}, Validation(MsgMissingData)
	}
	u, err := s.dir.Lookup(ctx, iin)
	switch {
	case err == nil:
		s.metrics.ObserveLookup("found")
		return u, nil
	case errors.Is(err, directory.ErrNotFound):
		s.metrics.ObserveLookup("not_found")
		s.log.Info(ctx, "no directory record", "iin", iin)
		return directory.User{}, &NotFoundError{IIN: iin}
	case errors.Is(err, directory.ErrNoConnection):
		s.metrics.ObserveLookup("error")
		return directory.User{}, &ConnectionError{Err: err}
	default:
		s.metrics.ObserveLookup("error")
		return directory.User{}, err
	}
}

// UpdateFace validates req and replaces the user's face template in Perco.
// It returns Perco's response body.
func (s *Service) UpdateFace(ctx context.Context, req FaceRequest) (json.RawMessage, error) {
	iin := strings.TrimSpace(req.IIN)
	if iin == "" {
		return nil, Validation(MsgIINRequired)
	}
	if !ValidIIN(iin) {
		return nil, Validation(MsgIINInvalid)
	}
	dataURL := strings.TrimSpace(req.Photo)
	if dataURL == "" {
		return nil, Validation(MsgPhotoRequired)
	}
	photo, err := DecodePhoto(dataURL)
	if err != nil {
		s.log.Info(ctx, "photo rejected", "iin", iin, "err", err)
		return nil, err
	}
	s.log.Debug(ctx, "photo decoded", "iin", iin, "bytes", photo.Size)

	var userID int64
	if req.UserID != nil {
		userID = *req.UserID
	} else {
		u, err := s.LookupUser(ctx, iin)
		if err != nil {
			return nil, err
		}
		userID = u.UserID
	}

	resp, err := s.bio.UpdateBio(ctx, userID, photo.Base64)
	if err != nil {
		return nil, &UpstreamError{Message: MsgBioUpdateFailed, Err: err}
	}
	s.log.Info(ctx, "face template updated", "iin", iin, "user_id", userID, "bytes", photo.Size)
	return resp, nil
}
