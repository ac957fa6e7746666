package handler

import (
	"net/http"

	"github.com/DukeZhu95/classroom-backend/internal/modules/submission/dto"
	submission "github.com/DukeZhu95/classroom-backend/internal/modules/submission/service"
	"github.com/DukeZhu95/classroom-backend/pkg/response"
	"github.com/DukeZhu95/classroom-backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubmissionHandler struct {
	service submission.SubmissionService
}

func NewSubmissionHandler(service submission.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Submit accepts multipart form data: a required "content" field and an
// optional "attachment" file.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req dto.SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	var attachment *submission.AttachmentUpload
	if fileHeader, err := c.FormFile("attachment"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read attachment"})
			return
		}
		defer file.Close()

		attachment = &submission.AttachmentUpload{
			Reader:   file,
			FileName: fileHeader.Filename,
		}
	}

	resp, err := h.service.Submit(c.Request.Context(), studentID, taskID, req, attachment)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubmissionHandler) Grade(c *gin.Context) {
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

	studentID, err := uuid.Parse(c.Param("studentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Grade(c.Request.Context(), teacherID, taskID, studentID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubmissionHandler) GetMySubmission(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	resp, err := h.service.GetSubmission(c.Request.Context(), taskID, studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubmissionHandler) ListTaskSubmissions(c *gin.Context) {
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

	resp, err := h.service.ListTaskSubmissions(c.Request.Context(), teacherID, taskID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubmissionHandler) ListStudentSubmissions(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.ListStudentSubmissions(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubmissionHandler) ClassSubmissionStats(c *gin.Context) {
	teacherID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	classroomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	resp, err := h.service.ClassSubmissionStats(c.Request.Context(), teacherID, classroomID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
