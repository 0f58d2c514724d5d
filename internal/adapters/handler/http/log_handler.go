package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/dayrise-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/progress"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/services"
)

type LogHandler struct {
	svc             *services.LogService
	defaultTimezone string
}

func NewLogHandler(svc *services.LogService, defaultTimezone string) *LogHandler {
	return &LogHandler{
		svc:             svc,
		defaultTimezone: defaultTimezone,
	}
}

type completeRequest struct {
	CompletedAt string `json:"completed_at"`
}

func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/routines/:id/logs", h.Complete)
	router.GET("/logs/:id", h.Get)
	router.DELETE("/logs/:id", h.Cancel)
}

// Complete marks a routine done. The body is optional; without completed_at
// the log is stamped with the current time.
func (h *LogHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	loc, err := resolveLocation(c, h.defaultTimezone)
	if err != nil {
		handleError(c, err)
		return
	}

	var req completeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
	}

	var completedAt time.Time
	if req.CompletedAt != "" {
		completedAt, err = progress.NewCalendar(loc).ParseTimestamp(req.CompletedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid completed_at", "details": err.Error()})
			return
		}
	}

	entry, err := h.svc.Complete(c.Request.Context(), services.CompleteInput{
		RoutineID:   c.Param("id"),
		UserID:      userID,
		CompletedAt: completedAt,
		Location:    loc,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *LogHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	entry, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *LogHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	loc, err := resolveLocation(c, h.defaultTimezone)
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), c.Param("id"), userID, loc); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized access"})

	case errors.Is(err, domain.ErrRoutineNotFound) || errors.Is(err, domain.ErrLogNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "routine already completed for this day"})

	case errors.Is(err, domain.ErrRoutineInactive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrRoutineTitleEmpty),
		errors.Is(err, domain.ErrRoutineTitleTooLong),
		errors.Is(err, domain.ErrInvalidFrequency),
		errors.Is(err, domain.ErrInvalidTargetCount),
		errors.Is(err, domain.ErrInvalidReminder),
		errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, domain.ErrInvalidLog),
		errors.Is(err, domain.ErrInvalidTimezone):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, progress.ErrMalformedTimestamp):
		log.Printf("[ERROR] Malformed stored data on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "stored history contains a malformed timestamp"})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
