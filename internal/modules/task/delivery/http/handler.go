package handler

import (
	"net/http"

	"github.com/DukeZhu95/classroom-backend/internal/modules/task/dto"
	task "github.com/DukeZhu95/classroom-backend/internal/modules/task/service"
	"github.com/DukeZhu95/classroom-backend/pkg/response"
	"github.com/DukeZhu95/classroom-backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	service task.TaskService
}

func NewTaskHandler(service task.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.CreateTask(c.Request.Context(), teacherID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.UpdateTask(c.Request.Context(), teacherID, taskID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), teacherID, taskID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted successfully"})
}

func (h *TaskHandler) ArchiveTask(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	resp, err := h.service.ArchiveTask(c.Request.Context(), teacherID, taskID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) ListClassTasks(c *gin.Context) {
	callerID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	role, err := response.GetUserRole(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	classroomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	resp, err := h.service.ListClassTasks(c.Request.Context(), callerID, role, classroomID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) ListStudentTasks(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.ListStudentTasks(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) ListTeacherTasks(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.ListTeacherTasks(c.Request.Context(), teacherID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
