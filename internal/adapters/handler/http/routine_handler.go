package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/dayrise-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/services"
)

type RoutineHandler struct {
	svc *services.RoutineService
}

func NewRoutineHandler(svc *services.RoutineService) *RoutineHandler {
	return &RoutineHandler{
		svc: svc,
	}
}

type createRoutineRequest struct {
	Title        string `json:"title" binding:"required"`
	Frequency    string `json:"frequency"`
	ReminderTime string `json:"reminder_time"`
	TargetCount  int    `json:"target_count"`
}

type updateRoutineRequest struct {
	Title        string `json:"title"`
	Frequency    string `json:"frequency"`
	ReminderTime string `json:"reminder_time"`
	TargetCount  int    `json:"target_count"`
}

type reorderItem struct {
	ID        string `json:"id" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

type reorderRequest struct {
	Order []reorderItem `json:"order" binding:"required,dive"`
}

func (h *RoutineHandler) RegisterRoutes(router *gin.RouterGroup) {
	routines := router.Group("/routines")
	{
		routines.POST("", h.Create)
		routines.GET("", h.List)
		routines.PUT("/order", h.Reorder)
		routines.PUT("/:id", h.Update)
		routines.DELETE("/:id", h.Deactivate)
	}
}

func (h *RoutineHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	routine, err := h.svc.Create(c.Request.Context(), services.CreateRoutineInput{
		UserID:       userID,
		Title:        req.Title,
		Frequency:    req.Frequency,
		ReminderTime: req.ReminderTime,
		TargetCount:  req.TargetCount,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, routine)
}

func (h *RoutineHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *RoutineHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req updateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	routine, err := h.svc.Update(c.Request.Context(), services.UpdateRoutineInput{
		ID:           c.Param("id"),
		UserID:       userID,
		Title:        req.Title,
		Frequency:    req.Frequency,
		ReminderTime: req.ReminderTime,
		TargetCount:  req.TargetCount,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, routine)
}

func (h *RoutineHandler) Deactivate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	if err := h.svc.Deactivate(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RoutineHandler) Reorder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := make([]domain.RoutineOrder, 0, len(req.Order))
	for _, item := range req.Order {
		order = append(order, domain.RoutineOrder{ID: item.ID, SortOrder: item.SortOrder})
	}

	if err := h.svc.Reorder(c.Request.Context(), userID, order); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
