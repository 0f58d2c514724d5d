package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/dayrise-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/services"
)

const monthLayout = "2006-01"

type StatsHandler struct {
	svc             *services.StatsService
	defaultTimezone string
}

func NewStatsHandler(svc *services.StatsService, defaultTimezone string) *StatsHandler {
	return &StatsHandler{svc: svc, defaultTimezone: defaultTimezone}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("/profile", h.GetProfile)
		stats.GET("/home", h.GetHome)
		stats.GET("/monthly", h.GetMonthly)
	}
}

// input builds the stats request for the caller. It writes the error
// response itself and returns false when the request cannot proceed.
func (h *StatsHandler) input(c *gin.Context) (domain.StatsInput, bool) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return domain.StatsInput{}, false
	}

	loc, err := resolveLocation(c, h.defaultTimezone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.StatsInput{}, false
	}

	return domain.StatsInput{UserID: userID, Location: loc}, true
}

func (h *StatsHandler) GetProfile(c *gin.Context) {
	input, ok := h.input(c)
	if !ok {
		return
	}

	stats, err := h.svc.GetProfileStats(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetHome(c *gin.Context) {
	input, ok := h.input(c)
	if !ok {
		return
	}

	summary, err := h.svc.GetHomeSummary(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetMonthly returns the completion rate of one month, given as
// ?month=YYYY-MM. Without it the current month in the caller's zone is used.
func (h *StatsHandler) GetMonthly(c *gin.Context) {
	input, ok := h.input(c)
	if !ok {
		return
	}

	month := time.Now().In(input.Location)
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse(monthLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month format, expected YYYY-MM"})
			return
		}
		month = parsed
	}

	rate, err := h.svc.GetMonthlyRate(c.Request.Context(), input, month.Year(), month.Month())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rate)
}
