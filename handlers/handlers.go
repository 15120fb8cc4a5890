package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"chexray-pipeline/metrics"
	"chexray-pipeline/service"
	"chexray-pipeline/session"
)

// maxUploadBytes caps the accepted image size.
const maxUploadBytes = 32 << 20

// Handlers represents the HTTP handlers
type Handlers struct {
	svc *service.Service
}

// NewHandlers creates new HTTP handlers
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// RegisterRoutes attaches all API routes to the given group.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/health", h.HealthCheck)
	api.POST("/probe", h.Probe)
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.DELETE("/sessions/:id", h.DeleteSession)
	api.POST("/sessions/:id/image", h.UploadImage)
	api.POST("/sessions/:id/analyze", h.Analyze)
	api.GET("/sessions/:id/report/medical", h.DownloadMedicalReport)
	api.GET("/sessions/:id/report/patient", h.DownloadPatientReport)
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "chexray-pipeline",
	})
}

// Probe checks whether the inference backend is reachable. When a
// session_id is supplied the outcome is recorded on that session.
func (h *Handlers) Probe(c *gin.Context) {
	var req struct {
		Endpoint  string `json:"endpoint"`
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	var sess *session.Session
	if req.SessionID != "" {
		sess = h.svc.Sessions().Get(req.SessionID)
		if sess == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Session not found",
			})
			return
		}
		if req.Endpoint != "" {
			sess.SetOverrides(req.Endpoint, "")
		}
	}

	endpoint := req.Endpoint
	if endpoint == "" && sess != nil {
		endpoint = h.svc.Endpoint(sess)
	}
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No endpoint to probe",
		})
		return
	}

	connected := h.svc.Probe(sess, endpoint)
	c.JSON(http.StatusOK, gin.H{
		"connected": connected,
	})
}

// CreateSession starts a new analysis session
func (h *Handlers) CreateSession(c *gin.Context) {
	sess := h.svc.Sessions().Create()
	metrics.SessionsActive.Set(float64(h.svc.Sessions().Count()))
	c.JSON(http.StatusCreated, sess.View())
}

// GetSession returns the session state including any committed results
func (h *Handlers) GetSession(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// DeleteSession ends a session; this is the only way state is cleared
func (h *Handlers) DeleteSession(c *gin.Context) {
	if !h.svc.Sessions().Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Session not found",
		})
		return
	}
	metrics.SessionsActive.Set(float64(h.svc.Sessions().Count()))
	c.Status(http.StatusNoContent)
}

// UploadImage accepts a chest X-ray upload (png/jpg/jpeg) for a session
func (h *Handlers) UploadImage(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing image file",
		})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "Image too large",
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported image type, expected png/jpg/jpeg",
		})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to open uploaded file",
		})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read uploaded file",
		})
		return
	}

	sess.SetImage(data, file.Filename)
	c.JSON(http.StatusOK, sess.View())
}

// Analyze runs the blocking analysis pipeline for a session
func (h *Handlers) Analyze(c *gin.Context) {
	sess := h.session(c)
	if sess == nil {
		return
	}

	// Optional endpoint/API key overrides, mirroring the sidebar
	// inputs of the original UI. An absent body decodes as io.EOF;
	// ContentLength is unreliable for chunked requests.
	var req struct {
		Endpoint string `json:"endpoint"`
		APIKey   string `json:"api_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}
	sess.SetOverrides(req.Endpoint, req.APIKey)

	result, err := h.svc.Analyze(sess, h.svc.Endpoint(sess))
	if err != nil {
		// Preconditions are the caller's to fix; only failures past
		// them are upstream errors.
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, service.ErrNoImage):
			status = http.StatusConflict
		case errors.Is(err, service.ErrNoEndpoint):
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DownloadMedicalReport serves the committed medical report verbatim
func (h *Handlers) DownloadMedicalReport(c *gin.Context) {
	h.downloadReport(c, "medical_report.txt", func(sess *session.Session) string {
		return sess.Result().MedicalReport
	})
}

// DownloadPatientReport serves the committed layman report verbatim
func (h *Handlers) DownloadPatientReport(c *gin.Context) {
	h.downloadReport(c, "patient_report.txt", func(sess *session.Session) string {
		return sess.Result().LaymanReport
	})
}

func (h *Handlers) downloadReport(c *gin.Context, filename string, text func(*session.Session) string) {
	sess := h.session(c)
	if sess == nil {
		return
	}
	if sess.Result() == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": "No completed analysis for this session",
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text(sess)))
}

func (h *Handlers) session(c *gin.Context) *session.Session {
	sess := h.svc.Sessions().Get(c.Param("id"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Session not found",
		})
		return nil
	}
	return sess
}
