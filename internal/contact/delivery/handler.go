package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"netcrm-backend/internal/contact/domain"
	"netcrm-backend/internal/contact/dto"
	"netcrm-backend/internal/contact/repository"
	"netcrm-backend/internal/contact/usecase"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactUsecase usecase.ContactUsecase
}

func NewContactHandler(contactUsecase usecase.ContactUsecase) *ContactHandler {
	return &ContactHandler{contactUsecase: contactUsecase}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrContactNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrSelfMerge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *ContactHandler) Create(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.contactUsecase.Create(userID, &req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) List(c *gin.Context) {
	userID := c.GetString("userID")

	filter := repository.ListFilter{
		Tag:     c.Query("tag"),
		Band:    domain.Band(c.Query("band")),
		Search:  c.Query("search"),
		OrderBy: c.Query("order_by"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = offset
	}
	if archived := c.Query("archived"); archived != "" {
		v := archived == "true"
		filter.Archived = &v
	}

	resp, err := h.contactUsecase.List(userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ContactHandler) Get(c *gin.Context) {
	userID := c.GetString("userID")

	contact, err := h.contactUsecase.Get(userID, c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Update(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.contactUsecase.Update(userID, c.Param("id"), &req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contact)
}

// Delete archives by default. Pass ?hard=true to remove the contact and its
// interaction history for good.
func (h *ContactHandler) Delete(c *gin.Context) {
	userID := c.GetString("userID")
	contactID := c.Param("id")

	var err error
	if c.Query("hard") == "true" {
		err = h.contactUsecase.Delete(userID, contactID)
	} else {
		err = h.contactUsecase.Archive(userID, contactID)
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contact removed"})
}

func (h *ContactHandler) RecordInteraction(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.RecordInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interaction, err := h.contactUsecase.RecordInteraction(userID, c.Param("id"), &req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, interaction)
}

func (h *ContactHandler) ListInteractions(c *gin.Context) {
	userID := c.GetString("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	interactions, total, err := h.contactUsecase.ListInteractions(userID, c.Param("id"), limit, offset)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interactions": interactions,
		"total":        total,
	})
}

func (h *ContactHandler) FindDuplicates(c *gin.Context) {
	userID := c.GetString("userID")

	pairs, err := h.contactUsecase.FindDuplicates(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"duplicates": pairs})
}

func (h *ContactHandler) Merge(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := h.contactUsecase.Merge(userID, &req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Search(c *gin.Context) {
	userID := c.GetString("userID")

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	contacts, err := h.contactUsecase.FuzzySearch(userID, query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}
