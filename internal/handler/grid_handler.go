package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplan-dev/timegrid-api/internal/models"
	"github.com/uniplan-dev/timegrid-api/internal/service"
	appErrors "github.com/uniplan-dev/timegrid-api/pkg/errors"
	"github.com/uniplan-dev/timegrid-api/pkg/response"
)

// GridHandler exposes the weekly grid over HTTP.
type GridHandler struct {
	service *service.GridService
}

// NewGridHandler constructs handler.
func NewGridHandler(svc *service.GridService) *GridHandler {
	return &GridHandler{service: svc}
}

// Register mounts grid routes on the router group.
func (h *GridHandler) Register(rg *gin.RouterGroup) {
	grid := rg.Group("/grid")
	grid.GET("/week", h.Week)
	grid.PUT("/filters", h.SetFilters)
	grid.GET("/conflicts", h.Conflicts)
	grid.POST("/events", h.UpsertEvent)
	grid.POST("/events/:id/relocate", h.Relocate)
	grid.DELETE("/events/:id", h.RemoveEvent)
	grid.POST("/drag/pickup", h.DragPickUp)
	grid.POST("/drag/hover", h.DragHover)
	grid.POST("/drag/drop", h.DragDrop)
	grid.POST("/drag/cancel", h.DragCancel)
}

// Week godoc
// @Summary Load and render one week of the grid
// @Tags Grid
// @Produce json
// @Param anchor query string true "Any date inside the wanted week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /grid/week [get]
func (h *GridHandler) Week(c *gin.Context) {
	anchor := c.Query("anchor")
	if anchor == "" {
		response.Error(c, appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "anchor query parameter is required"))
		return
	}
	weekView, err := h.service.LoadWeek(c.Request.Context(), anchor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weekView, nil)
}

// SetFilters godoc
// @Summary Replace the active filter criteria
// @Tags Grid
// @Accept json
// @Produce json
// @Param payload body service.SetFiltersRequest true "Filter criteria"
// @Success 200 {object} response.Envelope
// @Router /grid/filters [put]
func (h *GridHandler) SetFilters(c *gin.Context) {
	var req service.SetFiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter payload"))
		return
	}
	criteria, count, err := h.service.SetFilters(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, criteria, nil, map[string]interface{}{"visible_count": count})
}

// Conflicts godoc
// @Summary Current conflict summary for the loaded window
// @Tags Grid
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grid/conflicts [get]
func (h *GridHandler) Conflicts(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Conflicts(), nil)
}

// Relocate godoc
// @Summary Move an event to a new day and start time
// @Tags Grid
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body relocateBody true "Target cell"
// @Success 200 {object} response.Envelope
// @Router /grid/events/{id}/relocate [post]
func (h *GridHandler) Relocate(c *gin.Context) {
	var body relocateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid relocation payload"))
		return
	}
	moved, err := h.service.Relocate(c.Request.Context(), service.RelocateRequest{
		EventID:   c.Param("id"),
		Date:      body.Date,
		StartTime: body.StartTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, moved, nil)
}

type relocateBody struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
}

// UpsertEvent godoc
// @Summary Add or replace a calendar event
// @Tags Grid
// @Accept json
// @Produce json
// @Param payload body models.CalendarEvent true "Event"
// @Success 201 {object} response.Envelope
// @Router /grid/events [post]
func (h *GridHandler) UpsertEvent(c *gin.Context) {
	var event models.CalendarEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload"))
		return
	}
	saved, err := h.service.UpsertEvent(event)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// RemoveEvent godoc
// @Summary Delete an event from the grid
// @Tags Grid
// @Param id path string true "Event ID"
// @Success 204
// @Router /grid/events/{id} [delete]
func (h *GridHandler) RemoveEvent(c *gin.Context) {
	if err := h.service.RemoveEvent(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DragPickUp godoc
// @Summary Start a drag gesture for an event
// @Tags Drag
// @Accept json
// @Produce json
// @Param payload body dragPickUpBody true "Event reference"
// @Success 200 {object} response.Envelope
// @Router /grid/drag/pickup [post]
func (h *GridHandler) DragPickUp(c *gin.Context) {
	var body dragPickUpBody
	if err := c.ShouldBindJSON(&body); err != nil || body.EventID == "" {
		response.Error(c, appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "event_id is required"))
		return
	}
	if err := h.service.BeginDrag(body.EventID); err != nil {
		response.Error(c, err)
		return
	}
	phase, id := h.service.DragState()
	response.JSON(c, http.StatusOK, gin.H{"phase": phase, "event_id": id}, nil)
}

type dragPickUpBody struct {
	EventID string `json:"event_id"`
}

// DragHover godoc
// @Summary Record the grid cell under the pointer
// @Tags Drag
// @Accept json
// @Produce json
// @Param payload body service.DragTargetRequest true "Target cell"
// @Success 200 {object} response.Envelope
// @Router /grid/drag/hover [post]
func (h *GridHandler) DragHover(c *gin.Context) {
	var req service.DragTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid drag target"))
		return
	}
	occupied, err := h.service.HoverDrag(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"date": req.Date, "slot": req.Slot, "occupied": occupied}, nil)
}

// DragDrop godoc
// @Summary Drop the dragged event on a grid cell
// @Tags Drag
// @Accept json
// @Produce json
// @Param payload body service.DragTargetRequest true "Target cell"
// @Success 200 {object} response.Envelope
// @Router /grid/drag/drop [post]
func (h *GridHandler) DragDrop(c *gin.Context) {
	var req service.DragTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid drag target"))
		return
	}
	moved, err := h.service.CompleteDrag(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, moved, nil)
}

// DragCancel godoc
// @Summary Abandon the active drag gesture
// @Tags Drag
// @Success 204
// @Router /grid/drag/cancel [post]
func (h *GridHandler) DragCancel(c *gin.Context) {
	h.service.CancelDrag()
	response.NoContent(c)
}
