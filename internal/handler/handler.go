package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"faceenroll/internal/directory"
	"faceenroll/internal/enroll"
	"faceenroll/internal/httpmiddleware"
	"faceenroll/internal/logging"
)

// Enroller is the face enrollment use case.
type Enroller interface {
	LookupUser(ctx context.Context, iin string) (directory.User, error)
	UpdateFace(ctx context.Context, req enroll.FaceRequest) (json.RawMessage, error)
}

// AccessControl exposes read-only Perco calls.
type AccessControl interface {
	Devices(ctx context.Context) (json.RawMessage, error)
	Bio(ctx context.Context, userID int64) (json.RawMessage, error)
}

type Handler struct {
	svc   Enroller
	perco AccessControl
	log   logging.Logger
}

func New(svc Enroller, perco AccessControl, log logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{svc: svc, perco: perco, log: log}
}

// Register mounts the API routes on r. Guards, if any, run in front of the
// diagnostic Perco endpoints only.
func (h *Handler) Register(r gin.IRouter, guards ...gin.HandlerFunc) {
	api := r.Group("/api")
	{
		api.GET("/users/by_iin/:iin", h.GetUserByIIN)
		api.POST("/get_user_by_iin", h.PostUserByIIN)
		api.PUT("/users/:user_id/face", h.UpsertUserFace)
		api.POST("/submit-face", h.SubmitFace)
	}

	diag := api.Group("", guards...)
	{
		diag.GET("/devices", h.ListDevices)
		diag.GET("/users/:user_id/bio", h.GetUserBio)
	}
}

// ---------- Directory ----------

func (h *Handler) GetUserByIIN(c *gin.Context) {
	h.lookup(c, c.Param("iin"))
}

func (h *Handler) PostUserByIIN(c *gin.Context) {
	var req lookupRequest
	if _, err := decodeStrict(c.Request.Body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": enroll.MsgMissingData})
		return
	}
	h.lookup(c, req.IIN)
}

func (h *Handler) lookup(c *gin.Context, iin string) {
	h.logger(c).Info(c.Request.Context(), "directory lookup", "iin", iin)
	u, err := h.svc.LookupUser(c.Request.Context(), iin)
	if err != nil {
		status, msg := h.fail(c, err)
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"user_id":     u.UserID,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"middle_name": u.MiddleName,
	})
}

// ---------- Face ----------

// UpsertUserFace replaces the face of the user given in the path.
func (h *Handler) UpsertUserFace(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": enroll.MsgUserIDInvalid})
		return
	}
	var req faceUpdateRequest
	if _, err := decodeStrict(c.Request.Body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": enroll.MsgMissingData})
		return
	}

	resp, err := h.svc.UpdateFace(c.Request.Context(), enroll.FaceRequest{IIN: req.IIN, UserID: &id, Photo: req.Photo})
	if err != nil {
		status, msg := h.fail(c, err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "photo updated",
		"db_response": resp,
	})
}

// SubmitFace is the web form endpoint. user_id is optional; without it the
// IIN is resolved through the directory.
func (h *Handler) SubmitFace(c *gin.Context) {
	var req submitFaceRequest
	if badID, err := decodeStrict(c.Request.Body, &req); err != nil {
		msg := enroll.MsgMissingData
		if badID {
			msg = enroll.MsgUserIDInvalid
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	_, err := h.svc.UpdateFace(c.Request.Context(), enroll.FaceRequest{IIN: req.IIN, UserID: req.UserID.ptr(), Photo: req.Photo})
	if err != nil {
		status, msg := h.fail(c, err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "image received"})
}

// ---------- Perco passthrough ----------

func (h *Handler) ListDevices(c *gin.Context) {
	devices, err := h.perco.Devices(c.Request.Context())
	if err != nil {
		h.logger(c).Error(c.Request.Context(), "list devices failed", "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "access control unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": devices})
}

func (h *Handler) GetUserBio(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": enroll.MsgUserIDInvalid})
		return
	}
	bio, err := h.perco.Bio(c.Request.Context(), id)
	if err != nil {
		h.logger(c).Error(c.Request.Context(), "get bio failed", "user_id", id, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "access control unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": bio})
}

// fail maps err to a status and a client-safe message and logs the detail.
func (h *Handler) fail(c *gin.Context, err error) (int, string) {
	status, msg := enroll.Public(err)
	log := h.logger(c)
	if status >= http.StatusInternalServerError {
		log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "status", status, "err", err)
	} else {
		log.Info(c.Request.Context(), "request rejected", "path", c.FullPath(), "status", status, "reason", msg)
	}
	return status, msg
}

func (h *Handler) logger(c *gin.Context) logging.Logger {
	if id := httpmiddleware.GetRequestID(c); id != "" {
		return h.log.With("request_id", id)
	}
	return h.log
}

// Recovery turns panics into a generic 500 so nothing escapes to the transport.
func Recovery(log logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error(c.Request.Context(), "panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": enroll.MsgInternal})
	})
}
