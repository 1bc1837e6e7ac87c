// Package api implements the submission endpoint: validate a transcription
// request, admit it as a job, and enqueue it for the worker pool.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aquastream/transcriptd/internal/errors"
	"github.com/aquastream/transcriptd/internal/job"
	"github.com/aquastream/transcriptd/internal/logger"
	"github.com/aquastream/transcriptd/internal/server"
	"github.com/aquastream/transcriptd/internal/validation"
	"github.com/aquastream/transcriptd/internal/videourl"
)

// Enqueuer is the broker side the handler produces to.
type Enqueuer interface {
	Enqueue(ctx context.Context, j job.Job) error
}

// TranscriptRequest is the body of POST /transcript.
type TranscriptRequest struct {
	VideoURL   string `json:"video_url" validate:"required"`
	WebhookURL string `json:"webhook_url" validate:"required,url"`
	Author     string `json:"author"`
}

// TranscriptResponse acknowledges an accepted submission.
type TranscriptResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// Handler serves the transcript submission API.
type Handler struct {
	queue Enqueuer
	log   *logger.Logger
}

// NewHandler creates a Handler producing to the given queue.
func NewHandler(queue Enqueuer, log *logger.Logger) *Handler {
	return &Handler{queue: queue, log: log.WithComponent("api")}
}

// RegisterRoutes mounts the API routes behind the given auth middleware.
func (h *Handler) RegisterRoutes(engine *gin.Engine, auth gin.HandlerFunc) {
	engine.POST("/transcript", auth, h.Submit)
}

// Submit validates a submission, generates the job identifier, and
// enqueues the job. The caller receives only the identifier and an
// accepted acknowledgment; execution happens off this path.
func (h *Handler) Submit(c *gin.Context) {
	var req TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.Validation("request body must be valid JSON"))
		return
	}

	if err := validation.Validate(&req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	if !videourl.Supported(req.VideoURL) {
		server.RespondWithError(c, errors.UnsupportedSource(req.VideoURL))
		return
	}

	if req.Author == "" {
		req.Author = job.DefaultAuthor
	}

	j := job.Job{
		ID:         uuid.NewString(),
		VideoURL:   req.VideoURL,
		WebhookURL: req.WebhookURL,
		Author:     req.Author,
	}

	if err := h.queue.Enqueue(c.Request.Context(), j); err != nil {
		h.log.Error("Enqueue failed", logger.Fields(
			logger.FieldTaskID, j.ID,
			logger.FieldError, err.Error(),
		))
		server.RespondWithError(c, errors.Internal(err))
		return
	}

	h.log.Info("Job accepted", logger.Fields(
		logger.FieldTaskID, j.ID,
		"video_url", j.VideoURL,
		"author", j.Author,
	))
	server.RespondAccepted(c, TranscriptResponse{TaskID: j.ID, Status: "queued"})
}
