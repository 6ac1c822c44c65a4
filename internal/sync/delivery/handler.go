package delivery

import (
	"errors"
	"net/http"
	"strconv"

	contactusecase "netcrm-backend/internal/contact/usecase"
	"netcrm-backend/internal/sync/dto"
	"netcrm-backend/internal/sync/usecase"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
}

func NewSyncHandler(syncUsecase usecase.SyncUsecase) *SyncHandler {
	return &SyncHandler{syncUsecase: syncUsecase}
}

func (h *SyncHandler) SyncGmail(c *gin.Context) {
	userID := c.GetString("userID")

	result, err := h.syncUsecase.SyncGmail(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNotConnected), errors.Is(err, usecase.ErrSyncDisabled):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) GetSyncConfig(c *gin.Context) {
	config, err := h.syncUsecase.GetSyncConfig(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config)
}

func (h *SyncHandler) UpdateSyncConfig(c *gin.Context) {
	var req dto.UpdateSyncConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config, err := h.syncUsecase.UpdateSyncConfig(c.GetString("userID"), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, config)
}

func (h *SyncHandler) ScanCalendar(c *gin.Context) {
	userID := c.GetString("userID")

	result, err := h.syncUsecase.ScanCalendar(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrNotConnected) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) ImportGoogleContacts(c *gin.Context) {
	userID := c.GetString("userID")

	job, err := h.syncUsecase.ImportGoogleContacts(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrNotConnected) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		// The job carries the failure detail when it exists.
		if job != nil {
			c.JSON(http.StatusBadGateway, job)
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *SyncHandler) ImportCSV(c *gin.Context) {
	userID := c.GetString("userID")

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	job, err := h.syncUsecase.ImportCSV(userID, file)
	if err != nil {
		if job != nil {
			c.JSON(http.StatusBadRequest, job)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *SyncHandler) GetImportJob(c *gin.Context) {
	userID := c.GetString("userID")

	job, err := h.syncUsecase.GetImportJob(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *SyncHandler) ListImportJobs(c *gin.Context) {
	userID := c.GetString("userID")

	jobs, err := h.syncUsecase.ListImportJobs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// ListThreads serves /contacts/:id/threads.
func (h *SyncHandler) ListThreads(c *gin.Context) {
	userID := c.GetString("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	threads, total, err := h.syncUsecase.ListThreadsByContact(userID, c.Param("id"), limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, contactusecase.ErrContactNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, contactusecase.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"threads": threads,
		"total":   total,
	})
}
