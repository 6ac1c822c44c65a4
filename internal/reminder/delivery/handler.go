package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"netcrm-backend/internal/reminder/dto"
	"netcrm-backend/internal/reminder/usecase"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	reminderUsecase usecase.ReminderUsecase
}

func NewReminderHandler(reminderUsecase usecase.ReminderUsecase) *ReminderHandler {
	return &ReminderHandler{reminderUsecase: reminderUsecase}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrReminderNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrBadDueDate), errors.Is(err, usecase.ErrBadSnoozeDays):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *ReminderHandler) Create(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder, err := h.reminderUsecase.Create(userID, &req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

func (h *ReminderHandler) List(c *gin.Context) {
	userID := c.GetString("userID")

	includeDone := c.Query("include_done") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reminders, total, err := h.reminderUsecase.List(userID, includeDone, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reminders": reminders,
		"total":     total,
	})
}

func (h *ReminderHandler) Update(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder, err := h.reminderUsecase.Update(userID, c.Param("id"), &req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) Complete(c *gin.Context) {
	userID := c.GetString("userID")

	reminder, err := h.reminderUsecase.Complete(userID, c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) Snooze(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder, err := h.reminderUsecase.Snooze(userID, c.Param("id"), req.Days)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) Delete(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.reminderUsecase.Delete(userID, c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reminder deleted"})
}
