package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dementia-tracker/internal/models"
	"dementia-tracker/internal/repository"
	"dementia-tracker/internal/response"
)

type SchedulesHandler struct {
	log  *zap.Logger
	repo *repository.Repository
}

func NewSchedulesHandler(log *zap.Logger, repo *repository.Repository) *SchedulesHandler {
	return &SchedulesHandler{log: log, repo: repo}
}

type createScheduleRequest struct {
	TestType      string `json:"test_type" binding:"required"`
	ScheduledDate string `json:"scheduled_date" binding:"required"` // YYYY-MM-DD
	ScheduledTime string `json:"scheduled_time"`
	Frequency     string `json:"frequency"`
	Notes         string `json:"notes"`
}

func (h *SchedulesHandler) Create(c *gin.Context) {
	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	date, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"scheduled_date": "must be YYYY-MM-DD"})
		return
	}

	schedule := &models.TestSchedule{
		UserID:        currentUserID(c),
		TestType:      req.TestType,
		ScheduledDate: date,
		ScheduledTime: req.ScheduledTime,
		Frequency:     req.Frequency,
		Notes:         req.Notes,
	}
	if err := h.repo.CreateSchedule(c, schedule); err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusCreated, schedule)
}

func (h *SchedulesHandler) List(c *gin.Context) {
	upcoming := c.DefaultQuery("upcoming", "false") == "true"
	schedules, err := h.repo.ListSchedules(c, currentUserID(c), upcoming)
	if err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, schedules)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *SchedulesHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	if err := h.repo.UpdateScheduleStatus(c, currentUserID(c), uint(id), req.Status); err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

func (h *SchedulesHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if err := h.repo.DeleteSchedule(c, currentUserID(c), uint(id)); err != nil {
		failRepo(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
