package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// ListTopicsResponse wraps the topic listing.
type ListTopicsResponse struct {
	Topics []domain.Topic `json:"topics"`
}

// ListUsersResponse wraps the user listing.
type ListUsersResponse struct {
	Users []domain.User `json:"users"`
}

// ListTopics godoc
// @ID       listTopics
// @Summary  List topics
// @Tags     Topics
// @Produce  json
// @Success  200  {object}  handlers.ListTopicsResponse
// @Failure  500  {object}  handlers.ErrorResponse
// @Router   /topics [get]
func (h *Handlers) ListTopics(c *gin.Context) {
	topics, err := h.catalog.Topics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ListTopicsResponse{Topics: topics})
}

// ListUsers godoc
// @ID       listUsers
// @Summary  List users
// @Tags     Users
// @Produce  json
// @Success  200  {object}  handlers.ListUsersResponse
// @Failure  500  {object}  handlers.ErrorResponse
// @Router   /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.catalog.Users(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ListUsersResponse{Users: users})
}
