package assistant

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"parttimepal-backend/internal/cvmatch"
	"parttimepal-backend/internal/jobsearch"
	"parttimepal-backend/internal/normalize"
	"parttimepal-backend/internal/session"
	"parttimepal-backend/internal/shared/server/middleware"
	"parttimepal-backend/internal/shared/server/respond"
	"parttimepal-backend/internal/shared/util"
)

// Handler wires HTTP handlers to the assistant service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// SessionsPath is the only session-free route besides health and metrics.
const SessionsPath = "/sessions"

// RegisterRoutes attaches the assistant routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST(SessionsPath, h.createSession)
	rg.GET("/session", h.getSession)
	rg.PUT("/session/mode", h.switchMode)
	rg.POST("/session/back", h.back)
	rg.PUT("/session/location", h.setLocation)
	rg.GET("/session/runs", h.listRuns)
	rg.POST("/jobs/search", h.search)
	rg.POST("/jobs/:id/analyze", h.analyzeListing)
	rg.POST("/verify", h.verify)
	rg.POST("/cv/match", h.matchCV)
}

func (h *Handler) createSession(c *gin.Context) {
	snap := h.Svc.CreateSession()
	c.Writer.Header().Set("X-Session-Id", snap.ID)
	respond.JSON(c, http.StatusCreated, snap)
}

func (h *Handler) getSession(c *gin.Context) {
	snap, err := h.Svc.Snapshot(middleware.SessionIDFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, snap)
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (h *Handler) switchMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	mode, err := session.ParseMode(strings.TrimSpace(req.Mode))
	if err != nil {
		h.fail(c, err)
		return
	}
	snap, err := h.Svc.SwitchMode(middleware.SessionIDFromContext(c), mode)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.annotate(c, snap, "->idle")
	respond.OK(c, snap)
}

func (h *Handler) back(c *gin.Context) {
	snap, err := h.Svc.Back(middleware.SessionIDFromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.annotate(c, snap, "->idle")
	respond.OK(c, snap)
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *Handler) setLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "latitude and longitude are required", nil)
		return
	}
	snap, err := h.Svc.SetLocation(middleware.SessionIDFromContext(c), *req.Latitude, *req.Longitude)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, snap)
}

func (h *Handler) listRuns(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}
	items, err := h.Svc.ListRuns(c.Request.Context(), middleware.SessionIDFromContext(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) search(c *gin.Context) {
	var criteria jobsearch.Criteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	snap, err := h.Svc.StartSearch(c.Request.Context(), middleware.SessionIDFromContext(c), criteria)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.annotate(c, snap, "->searching")
	respond.Accepted(c, snap)
}

func (h *Handler) analyzeListing(c *gin.Context) {
	jobID := strings.TrimSpace(c.Param("id"))
	c.Set("jobId", jobID)
	snap, err := h.Svc.AnalyzeListing(c.Request.Context(), middleware.SessionIDFromContext(c), jobID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.annotate(c, snap, "->analyzing")
	respond.Accepted(c, snap)
}

type verifyRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

func (h *Handler) verify(c *gin.Context) {
	in, ok := h.verifyInput(c)
	if !ok {
		return
	}
	snap, err := h.Svc.Verify(c.Request.Context(), middleware.SessionIDFromContext(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	if snap.SelectedJob != nil {
		c.Set("jobId", snap.SelectedJob.ID)
	}
	h.annotate(c, snap, "->analyzing")
	respond.Accepted(c, snap)
}

// verifyInput reads either a JSON body with text or url, or a multipart
// upload with an image field.
func (h *Handler) verifyInput(c *gin.Context) (normalize.RawInput, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, mimeType, _, ok := h.readUpload(c, "image")
		if !ok {
			return normalize.RawInput{}, false
		}
		return normalize.ImageInput(data, mimeType), true
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return normalize.RawInput{}, false
	}
	text, link := strings.TrimSpace(req.Text), strings.TrimSpace(req.URL)
	switch {
	case text != "" && link != "":
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "provide either text or url, not both", nil)
		return normalize.RawInput{}, false
	case link != "":
		return normalize.URLInput(link), true
	default:
		return normalize.TextInput(req.Text), true
	}
}

func (h *Handler) matchCV(c *gin.Context) {
	var (
		jobDescription string
		cv             normalize.RawInput
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		data, mimeType, name, ok := h.readUpload(c, "cv")
		if !ok {
			return
		}
		jobDescription = c.PostForm("jobDescription")
		cv = normalize.FileInput(data, mimeType, name)
	} else {
		var req struct {
			JobDescription string `json:"jobDescription"`
			CVText         string `json:"cvText"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
			return
		}
		jobDescription = req.JobDescription
		cv = normalize.TextInput(req.CVText)
	}

	out, err := h.Svc.MatchCV(c.Request.Context(), middleware.SessionIDFromContext(c), jobDescription, cv)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) readUpload(c *gin.Context, field string) ([]byte, string, string, bool) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	fileHeader, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeValidation, "file is too large", map[string]any{"maxBytes": h.MaxUploadBytes})
			return nil, "", "", false
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, field+" file is required", nil)
		return nil, "", "", false
	}
	name, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid file name", nil)
		return nil, "", "", false
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", nil)
		return nil, "", "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", nil)
		return nil, "", "", false
	}
	return data, fileHeader.Header.Get("Content-Type"), name, true
}

// annotate exposes generation and transition to the request log.
func (h *Handler) annotate(c *gin.Context, snap session.Snapshot, transition string) {
	c.Set("generation", snap.Generation)
	c.Set("statusTransition", transition)
}

func (h *Handler) fail(c *gin.Context, err error) {
	var rejection *RejectionError
	switch {
	case errors.As(err, &rejection):
		respond.Error(c, http.StatusUnprocessableEntity, respond.CodeInputRejected, rejection.Message, nil)
	case errors.Is(err, session.ErrSessionNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeSessionNotFound, respond.MsgSessionNotFound, nil)
	case errors.Is(err, session.ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, "action not allowed in the current state", nil)
	case errors.Is(err, session.ErrInvalidMode), errors.Is(err, session.ErrInvalidLocation):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, jobsearch.ErrKeywordRequired):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "Vui lòng nhập từ khóa tìm kiếm.", []map[string]string{
			{"field": "keyword", "issue": "required"},
		})
	case errors.Is(err, jobsearch.ErrInvalidSalaryRange):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), []map[string]string{
			{"field": "salaryRange", "issue": "invalid"},
		})
	case errors.Is(err, ErrMissingPayload):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "text, url or image is required", nil)
	case errors.Is(err, ErrJobNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "job not found", nil)
	case errors.Is(err, ErrNoSelectedJob), errors.Is(err, cvmatch.ErrJobDescriptionRequired):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "jobDescription is required when no job is selected", nil)
	case errors.Is(err, cvmatch.ErrCVRequired):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "cv is required", nil)
	case errors.Is(err, ErrMatchFailed):
		code := classifyFailure(err)
		status := http.StatusBadGateway
		if code == respond.CodeTimeout {
			status = http.StatusGatewayTimeout
		}
		respond.Error(c, status, code, cvmatch.MsgMatchFailed, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, respond.MsgInternal, nil)
	}
}
