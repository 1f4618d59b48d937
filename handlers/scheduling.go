package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homeserve/middleware"
	"homeserve/models"
	"homeserve/services/scheduling"
	"homeserve/utils"
)

// SchedulingService is the engine surface exposed over HTTP.
type SchedulingService interface {
	GenerateAvailableSlots(ctx context.Context, req models.SlotGenerationRequest) ([]models.TimeSlot, error)
	DetectConflicts(ctx context.Context, req models.BookingRequest) ([]models.ConflictDetail, error)
	BookSlot(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error)
	HandleAdminOverride(ctx context.Context, req models.BookingRequest, reason string, actor models.Actor) (*models.BookingResult, error)
	CancelBooking(ctx context.Context, workOrderID string, actor models.Actor, reason string) (*models.WorkOrder, error)
	GenerateAlternativeSlots(ctx context.Context, req models.BookingRequest) ([]models.TimeSlot, error)
	MatchPreferredDates(ctx context.Context, contractorID string, prefs []models.PreferredDate, durationMinutes int, timezone string) ([]models.PreferredDateMatch, error)
	AuditTrail(ctx context.Context, entityID string) ([]models.ScheduleAuditLog, error)
}

type SchedulingHandler struct {
	Service SchedulingService
	Logger  *zap.Logger
}

func NewSchedulingHandler(service SchedulingService, logger *zap.Logger) *SchedulingHandler {
	return &SchedulingHandler{Service: service, Logger: logger}
}

type overrideRequest struct {
	models.BookingRequest
	Reason string `json:"reason"`
}

type preferredDatesRequest struct {
	Preferences     []models.PreferredDate `json:"preferences" binding:"required"`
	DurationMinutes int                    `json:"durationMinutes"`
	Timezone        string                 `json:"timezone,omitempty"`
}

// GenerateSlotsHandler lists (and persists) bookable slots for a contractor.
func (h *SchedulingHandler) GenerateSlotsHandler(c *gin.Context) {
	var req models.SlotGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	req.ContractorID = c.Param("contractorID")

	slots, err := h.Service.GenerateAvailableSlots(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "Failed to generate slots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *SchedulingHandler) DetectConflictsHandler(c *gin.Context) {
	req, ok := h.bindBooking(c)
	if !ok {
		return
	}
	conflicts, err := h.Service.DetectConflicts(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "Failed to detect conflicts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasConflicts": len(conflicts) > 0, "conflicts": conflicts})
}

// BookSlotHandler books a slot. A request asking for an override is routed
// through the override path so the caller's role is checked.
func (h *SchedulingHandler) BookSlotHandler(c *gin.Context) {
	req, ok := h.bindBooking(c)
	if !ok {
		return
	}

	var (
		result *models.BookingResult
		err    error
	)
	if req.AdminOverride {
		result, err = h.Service.HandleAdminOverride(c.Request.Context(), req, req.OverrideReason, actorOf(c))
	} else {
		result, err = h.Service.BookSlot(c.Request.Context(), req)
	}
	if err != nil {
		h.writeError(c, "Failed to book slot", err)
		return
	}
	h.writeBookingResult(c, req, result)
}

func (h *SchedulingHandler) AdminOverrideHandler(c *gin.Context) {
	var body overrideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	reason := body.Reason
	if reason == "" {
		reason = body.OverrideReason
	}

	actor := actorOf(c)
	result, err := h.Service.HandleAdminOverride(c.Request.Context(), body.BookingRequest, reason, actor)
	if err != nil {
		h.writeError(c, "Failed to apply override", err)
		return
	}
	h.getLogger(c).Info("Admin override processed",
		zap.String("contractorID", body.ContractorID),
		zap.String("actor", actor.UserID),
		zap.Bool("success", result.Success))
	h.writeBookingResult(c, body.BookingRequest, result)
}

func (h *SchedulingHandler) CancelBookingHandler(c *gin.Context) {
	workOrderID := c.Param("workOrderID")
	wo, err := h.Service.CancelBooking(c.Request.Context(), workOrderID, actorOf(c), c.Query("reason"))
	if err != nil {
		h.writeError(c, "Failed to cancel booking", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "workOrder": wo})
}

func (h *SchedulingHandler) AlternativesHandler(c *gin.Context) {
	req, ok := h.bindBooking(c)
	if !ok {
		return
	}
	alternatives, err := h.Service.GenerateAlternativeSlots(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "Failed to generate alternatives", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alternatives": alternatives})
}

func (h *SchedulingHandler) PreferredDatesHandler(c *gin.Context) {
	var body preferredDatesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	matches, err := h.Service.MatchPreferredDates(c.Request.Context(), c.Param("contractorID"), body.Preferences, body.DurationMinutes, body.Timezone)
	if err != nil {
		h.writeError(c, "Failed to match preferred dates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (h *SchedulingHandler) AuditTrailHandler(c *gin.Context) {
	entries, err := h.Service.AuditTrail(c.Request.Context(), c.Param("entityID"))
	if err != nil {
		h.writeError(c, "Failed to load audit trail", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *SchedulingHandler) bindBooking(c *gin.Context) (models.BookingRequest, bool) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return req, false
	}
	actor := actorOf(c)
	req.UserID = actor.UserID
	req.UserRole = actor.Role
	return req, true
}

func (h *SchedulingHandler) writeBookingResult(c *gin.Context, req models.BookingRequest, result *models.BookingResult) {
	if !result.Success {
		h.getLogger(c).Info("Booking rejected",
			zap.String("contractorID", req.ContractorID),
			zap.String("workOrderID", req.WorkOrderID),
			zap.Int("conflicts", len(result.Conflicts)))
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// writeError maps scheduling errors onto HTTP statuses.
func (h *SchedulingHandler) writeError(c *gin.Context, message string, err error) {
	resp := utils.ErrorResponse{Message: message, Details: err.Error()}
	status := http.StatusInternalServerError

	var serr *scheduling.Error
	if errors.As(err, &serr) {
		resp.Code = serr.Code
		switch serr.Code {
		case scheduling.CodeNotFound:
			status = http.StatusNotFound
		case scheduling.CodeInvalidRequest:
			status = http.StatusBadRequest
		case scheduling.CodeForbidden:
			status = http.StatusForbidden
		case scheduling.CodeSlotUnavailable:
			status = http.StatusConflict
		case scheduling.CodeConcurrencyConflict:
			status = http.StatusConflict
			resp.Retryable = true
		}
	}
	if status == http.StatusInternalServerError {
		h.getLogger(c).Error(message, zap.Error(err))
		resp.Details = ""
	}
	utils.WriteError(c, status, resp)
}

func actorOf(c *gin.Context) models.Actor {
	actor, _ := middleware.ActorFrom(c)
	return actor
}
