package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openmun/delegation-api/internal/domain/event"
	"github.com/openmun/delegation-api/internal/response"
	"github.com/openmun/delegation-api/internal/storage/postgres"
	"github.com/openmun/delegation-api/internal/validation"
)

// EventHandler serves the conference calendar
type EventHandler struct {
	eventRepo postgres.EventRepository
	validator validation.EventValidation
}

func NewEventHandler(eventRepo postgres.EventRepository) *EventHandler {
	return &EventHandler{
		eventRepo: eventRepo,
	}
}

// List handles GET /api/events. With ?upcoming=true only events whose
// date has not yet passed are returned (the profile page's calendar view).
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.eventRepo.GetAll()
	if err != nil {
		response.InternalServerError(c, "Failed to load events")
		return
	}

	if c.Query("upcoming") == "true" {
		upcoming := make([]*event.Event, 0, len(events))
		for _, e := range events {
			if e.IsUpcoming() {
				upcoming = append(upcoming, e)
			}
		}
		events = upcoming
	}

	response.SuccessResponse(c, http.StatusOK, "", events)
}

// CreateEventRequest is the admin payload for a calendar entry
type CreateEventRequest struct {
	Title       string `json:"title" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// Create handles POST /api/events (admin)
func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequestError(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	if err := h.validator.ValidateEventTitle(req.Title); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := h.validator.ValidateEventDescription(req.Description); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := h.validator.ValidateEventDate(date); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	newEvent := event.NewEvent(req.Title, req.Description, date)
	if err := h.eventRepo.Create(newEvent); err != nil {
		response.InternalServerError(c, "Failed to create event")
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "Event created", newEvent)
}

// Delete handles DELETE /api/events/:id (admin)
func (h *EventHandler) Delete(c *gin.Context) {
	err := h.eventRepo.Delete(c.Param("id"))
	switch {
	case err == nil:
		response.SuccessResponse(c, http.StatusOK, "Event deleted", nil)
	case errors.Is(err, postgres.ErrNotFound):
		response.NotFoundError(c, "Event not found")
	default:
		response.BadRequestError(c, "Invalid event id")
	}
}
