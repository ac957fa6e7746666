package handler

import (
	"net/http"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/DukeZhu95/classroom-backend/internal/modules/profile/dto"
	profile "github.com/DukeZhu95/classroom-backend/internal/modules/profile/service"
	"github.com/DukeZhu95/classroom-backend/pkg/response"
	"github.com/DukeZhu95/classroom-backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	service profile.ProfileService
}

func NewProfileHandler(service profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
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

	resp, err := h.service.GetProfile(c.Request.Context(), userID, role)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProfile dispatches on the caller's role: the same endpoint edits a
// student or teacher profile. Fields arrive as multipart form data with an
// optional "avatar" file.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
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

	var avatar *profile.AvatarUpload
	if fileHeader, err := c.FormFile("avatar"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read avatar"})
			return
		}
		defer file.Close()

		avatar = &profile.AvatarUpload{
			Reader:   file,
			FileName: fileHeader.Filename,
		}
	}

	switch role {
	case entity.RoleStudent:
		var req dto.UpdateStudentProfileRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
			return
		}

		resp, err := h.service.UpdateStudentProfile(c.Request.Context(), userID, req, avatar)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	case entity.RoleTeacher:
		var req dto.UpdateTeacherProfileRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
			return
		}

		resp, err := h.service.UpdateTeacherProfile(c.Request.Context(), userID, req, avatar)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "unknown role"})
	}
}

func (h *ProfileHandler) DeleteTeacherProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteTeacherProfile(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile deleted successfully"})
}
