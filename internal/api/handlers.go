package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "voicenotes/internal/errors"
	"voicenotes/internal/logger"
	"voicenotes/internal/model"
	"voicenotes/internal/pipeline"
	"voicenotes/internal/repository"
	"voicenotes/internal/storage"
	"voicenotes/internal/utils"
)

// Handler carries the explicit dependencies of the HTTP layer, so tests can
// substitute fake pipelines and repositories without process-wide state.
type Handler struct {
	Pipeline       pipeline.Runner
	Repo           repository.RecordRepository // nil when running without a database
	Log            *logger.Logger
	UploadDir      string
	MaxUploadBytes int64
}

// RegisterRoutes wires the HTTP surface onto r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.healthCheck)

	api := r.Group("/api/transcribe")
	{
		api.POST("/audio", h.transcribeAudio)

		// History endpoints only exist when persistence is wired.
		if h.Repo != nil {
			api.GET("/history", h.listRecords)
			api.GET("/:id", h.getRecord)
			api.DELETE("/:id", h.deleteRecord)
		}
	}
}

// healthCheck returns server health status
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "Voice-to-Notes backend is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// transcribeAudio handles POST /api/transcribe/audio: accepts one multipart
// audio file, runs the pipeline, and returns the combined record.
func (h *Handler) transcribeAudio(c *gin.Context) {
	log := h.Log.WithRequest(c.Request)

	file, err := c.FormFile("audio")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "No audio file provided", "Please upload an audio file under the 'audio' field")
		return
	}

	upload, err := storage.SaveUpload(h.UploadDir, file, h.MaxUploadBytes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	log.WithFields(map[string]interface{}{
		"filename": upload.OriginalFilename,
		"size":     upload.Size,
		"type":     upload.ContentType,
	}).Info("processing audio upload")

	record, err := h.Pipeline.Run(c.Request.Context(), pipeline.Input{
		Path:             upload.Path,
		OriginalFilename: upload.OriginalFilename,
		Size:             upload.Size,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.SuccessWithMessage(c, "Audio transcribed successfully", recordPayload(record))
}

// listRecords handles GET /api/transcribe/history
func (h *Handler) listRecords(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100 // Max limit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	records, err := h.Repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.Log.WithError(err).Error("failed to list transcription records")
		h.respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(records))
	for i := range records {
		items = append(items, recordPayload(&records[i]))
	}

	utils.Success(c, gin.H{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"count":  len(items),
	})
}

// getRecord handles GET /api/transcribe/:id
func (h *Handler) getRecord(c *gin.Context) {
	record, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, recordPayload(record))
}

// deleteRecord handles DELETE /api/transcribe/:id
func (h *Handler) deleteRecord(c *gin.Context) {
	id := c.Param("id")
	if err := h.Repo.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, gin.H{
		"id":      id,
		"status":  "deleted",
		"message": "Transcription record deleted successfully",
	})
}

// respondError maps a classified error to its HTTP status. Unclassified
// errors become a generic 500; internal detail and credentials are never
// echoed to the caller.
func (h *Handler) respondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		utils.Error(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
		return
	}
	h.Log.WithError(err).Error("unexpected error")
	utils.Error(c, http.StatusInternalServerError, "Internal server error", "An error occurred while processing the audio file")
}

func recordPayload(rec *model.TranscriptionRecord) gin.H {
	payload := gin.H{
		"transcription":    rec.Transcription,
		"language":         rec.Language,
		"duration":         rec.Duration,
		"originalFilename": rec.OriginalFilename,
		"emotion":          rec.Emotion,
		"tone":             rec.Tone,
		"emotionReason":    rec.EmotionReason,
		"createdAt":        rec.CreatedAt.Format(time.RFC3339),
	}
	if !rec.ID.IsZero() {
		payload["id"] = rec.ID.Hex()
	}
	return payload
}
