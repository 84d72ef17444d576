package resumes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/intake"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/server/respond"
)

// multipartSlack covers the form framing and the userId field around a maximum-size file.
const multipartSlack = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to rg. uploadMiddleware runs only in front of the upload.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, uploadMiddleware ...gin.HandlerFunc) {
	rg.POST("/upload", append(uploadMiddleware, h.upload)...)
	rg.GET("/user/:userId", h.listByUser)
	rg.GET("/:resumeId", h.get)
	rg.DELETE("/:resumeId", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, intake.MaxFileSize+multipartSlack)

	// A missing file is left to the service, which rejects it as the intake stage.
	fileHeader, err := c.FormFile("resume")
	if err != nil && isBodyTooLarge(err) {
		metrics.IncUpload(metrics.OutcomeIntakeFailed)
		writeUploadError(c, &StageError{Stage: StageIntake, Err: intake.PayloadTooLarge()})
		return
	}

	userID := strings.TrimSpace(c.PostForm("userId"))
	if userID == "" {
		userID = AnonymousUser
	}
	c.Set("userId", userID)

	res, err := h.Svc.Upload(c.Request.Context(), UploadInput{UserID: userID, File: fileHeader})
	if err != nil {
		writeUploadError(c, err)
		return
	}

	c.Set("resumeId", res.ResumeID)
	c.Set("uploadStage", statePersisted)
	respond.OK(c, uploadResponse{
		Success:  true,
		ResumeID: res.ResumeID,
		Analysis: res.Analysis,
		Message:  "Resume analyzed successfully",
		FileName: res.FileName,
	})
}

func (h *Handler) listByUser(c *gin.Context) {
	userID := c.Param("userId")
	c.Set("userId", userID)

	items, err := h.Svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "userId is required", nil)
			return
		}
		c.Set("errorCause", err.Error())
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch resumes", nil)
		return
	}

	out := make([]ResumeResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toResponse(r))
	}
	respond.OK(c, listResponse{Success: true, Resumes: out})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("resumeId")
	c.Set("resumeId", id)

	res, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
			return
		}
		c.Set("errorCause", err.Error())
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch resume", nil)
		return
	}
	respond.OK(c, getResponse{Success: true, Resume: toResponse(res)})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("resumeId")
	c.Set("resumeId", id)

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
			return
		}
		c.Set("errorCause", err.Error())
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to delete resume", nil)
		return
	}
	respond.OK(c, messageResponse{Success: true, Message: "Resume deleted successfully"})
}

func writeUploadError(c *gin.Context, err error) {
	var se *StageError
	if !errors.As(err, &se) {
		c.Set("errorCause", err.Error())
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to process resume. Please try again.", nil)
		return
	}
	c.Set("uploadStage", string(se.Stage))
	c.Set("errorCause", se.Err.Error())

	switch se.Stage {
	case StageIntake:
		var ve *intake.ValidationError
		if !errors.As(se.Err, &ve) {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to process resume. Please try again.", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, intakeCode(ve.Kind), ve.Message, nil)
	case StageExtraction:
		var ee *extract.Error
		if !errors.As(se.Err, &ee) {
			respond.Error(c, http.StatusBadRequest, "extraction_failed", "Failed to extract text from file", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, extractionCode(ee.Reason), ee.Error(), nil)
	case StageAnalysis:
		respond.Error(c, http.StatusInternalServerError, "analysis_failed", "Failed to analyze resume. Please try again.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "persistence_failed", "Failed to save resume to database", nil)
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func intakeCode(kind error) string {
	switch kind {
	case intake.ErrNoFile:
		return "no_file"
	case intake.ErrUnsupportedFileType:
		return "unsupported_file_type"
	case intake.ErrPayloadTooLarge:
		return "payload_too_large"
	default:
		return "validation_error"
	}
}

func extractionCode(reason error) string {
	switch reason {
	case extract.ErrUnsupportedLegacyFormat:
		return "unsupported_legacy_format"
	case extract.ErrEmptyExtraction:
		return "empty_extraction"
	default:
		return "extraction_failed"
	}
}
