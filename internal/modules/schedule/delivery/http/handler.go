package handler

import (
	"net/http"

	"github.com/DukeZhu95/classroom-backend/internal/modules/schedule/dto"
	schedule "github.com/DukeZhu95/classroom-backend/internal/modules/schedule/service"
	"github.com/DukeZhu95/classroom-backend/pkg/response"
	"github.com/DukeZhu95/classroom-backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ScheduleHandler struct {
	service schedule.ScheduleService
}

func NewScheduleHandler(service schedule.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.CreateSchedule(c.Request.Context(), teacherID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.UpdateSchedule(c.Request.Context(), teacherID, entryID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	if err := h.service.DeleteSchedule(c.Request.Context(), teacherID, entryID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "schedule entry deleted successfully"})
}

func (h *ScheduleHandler) WeekCalendar(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	role, err := response.GetUserRole(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.WeekCalendar(c.Request.Context(), userID, role)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
