package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Endpoint describes one route in the GET /api listing.
type Endpoint struct {
	Description string   `json:"description"`
	Queries     []string `json:"queries,omitempty"`
	Body        any      `json:"exampleRequestBody,omitempty"`
}

// EndpointsResponse wraps the endpoint description map.
type EndpointsResponse struct {
	Endpoints map[string]Endpoint `json:"endpoints"`
}

// endpoints lists the public routes relative to the API base path.
var endpoints = []struct {
	method, path string
	Endpoint
}{
	{"GET", "", Endpoint{Description: "serves a description of every available endpoint"}},
	{"GET", "/topics", Endpoint{Description: "serves an array of all topics"}},
	{"GET", "/users", Endpoint{Description: "serves an array of all users"}},
	{"GET", "/articles", Endpoint{
		Description: "serves an array of all articles with their comment_count, newest first by default",
		Queries:     []string{"sort_by", "order", "topic"},
	}},
	{"GET", "/articles/:article_id", Endpoint{Description: "serves one article including its body and comment_count"}},
	{"PATCH", "/articles/:article_id", Endpoint{
		Description: "adds inc_votes to the article's votes and serves the updated article",
		Body:        map[string]any{"inc_votes": 1},
	}},
	{"GET", "/articles/:article_id/comments", Endpoint{Description: "serves the article's comments, newest first"}},
	{"POST", "/articles/:article_id/comments", Endpoint{
		Description: "adds a comment to the article and serves it; honours Idempotency-Key",
		Body:        map[string]any{"username": "butter_bridge", "body": "Great read"},
	}},
	{"DELETE", "/comments/:comment_id", Endpoint{Description: "deletes the comment and responds 204 with no body"}},
}

// GetAPI godoc
// @ID       getAPI
// @Summary  Describe the API
// @Tags     Meta
// @Produce  json
// @Success  200  {object}  handlers.EndpointsResponse
// @Router   / [get]
func (h *Handlers) GetAPI(c *gin.Context) {
	out := make(map[string]Endpoint, len(endpoints))
	for _, e := range endpoints {
		path := h.basePath + e.path
		if path == "" {
			path = "/"
		}
		out[e.method+" "+path] = e.Endpoint
	}
	ok(c, http.StatusOK, EndpointsResponse{Endpoints: out})
}
