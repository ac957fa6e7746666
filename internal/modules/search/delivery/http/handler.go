package handler

import (
	"net/http"
	"os"

	search "github.com/DukeZhu95/classroom-backend/internal/modules/search/service"
	"github.com/DukeZhu95/classroom-backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service search.TaskSearchService
}

func NewSearchHandler(service search.TaskSearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// GetSearchToken returns a fresh tenant token; clients re-fetch it after
// joining a classroom so the scope includes the new membership.
func (h *SearchHandler) GetSearchToken(c *gin.Context) {
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

	token, err := h.service.GenerateSearchToken(c.Request.Context(), userID, role)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	host := os.Getenv("MEILISEARCH_PUBLIC_HOST")
	if host == "" {
		host = os.Getenv("MEILISEARCH_HOST")
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "host": host})
}
