package handler

import (
	"net/http"
	"strings"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/DukeZhu95/classroom-backend/internal/modules/classroom/dto"
	classroom "github.com/DukeZhu95/classroom-backend/internal/modules/classroom/service"
	"github.com/DukeZhu95/classroom-backend/pkg/response"
	"github.com/DukeZhu95/classroom-backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClassroomHandler struct {
	service classroom.ClassroomService
}

func NewClassroomHandler(service classroom.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{service: service}
}

func (h *ClassroomHandler) CreateClass(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.CreateClass(c.Request.Context(), teacherID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ClassroomHandler) JoinClass(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.JoinClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	req.Code = strings.ToUpper(req.Code)

	resp, err := h.service.JoinClass(c.Request.Context(), studentID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ClassroomHandler) GetClassroom(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ClassroomHandler) GetClassroomByCode(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))

	resp, err := h.service.GetByCode(c.Request.Context(), code)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListClassrooms dispatches on the caller's role: teachers get the classes
// they own, students the classes they joined.
func (h *ClassroomHandler) ListClassrooms(c *gin.Context) {
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

	var resp []dto.ClassroomResponse
	if role == entity.RoleTeacher {
		resp, err = h.service.ListTeacherClasses(c.Request.Context(), userID)
	} else {
		resp, err = h.service.ListStudentClasses(c.Request.Context(), userID)
	}
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ClassroomHandler) GetRoster(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	resp, err := h.service.Roster(c.Request.Context(), id, teacherID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
