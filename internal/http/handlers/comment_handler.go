// Comment HTTP handlers.
//
//   - GET    /articles/{article_id}/comments  (newest first)
//   - POST   /articles/{article_id}/comments  (create; Idempotency-Key aware)
//   - DELETE /comments/{comment_id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/http/middleware"
	"github.com/tbourn/go-news-backend/internal/services"
)

// ListCommentsResponse wraps an article's comments.
type ListCommentsResponse struct {
	Comments []domain.Comment `json:"comments"`
}

// CommentResponse wraps a single comment.
type CommentResponse struct {
	Comment *domain.Comment `json:"comment"`
}

// PostCommentRequest documents the comment post body.
type PostCommentRequest struct {
	Username string `json:"username" example:"butter_bridge"`
	Body     string `json:"body" example:"This morning, I showered for nine minutes."`
}

// ListComments godoc
// @ID          listComments
// @Summary     List an article's comments
// @Tags        Comments
// @Produce     json
// @Param       article_id  path  int  true  "Article ID"
// @Success     200  {object}  handlers.ListCommentsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid Id type"
// @Failure     404  {object}  handlers.ErrorResponse  "Article not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /articles/{article_id}/comments [get]
func (h *Handlers) ListComments(c *gin.Context) {
	comments, err := h.comments.ListByArticle(c.Request.Context(), c.Param("article_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ListCommentsResponse{Comments: comments})
}

// PostComment godoc
// @ID          postComment
// @Summary     Comment on an article
// @Description A repeated Idempotency-Key for the same article returns the
// @Description originally created comment with Idempotency-Replayed: true.
// @Tags        Comments
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                       false  "Retry key"
// @Param       article_id       path    int                          true   "Article ID"
// @Param       body             body    handlers.PostCommentRequest  true   "Comment"
// @Success     201  {object}  handlers.CommentResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing required fields / Invalid Id type / Invalid data type"
// @Failure     404  {object}  handlers.ErrorResponse  "Article not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /articles/{article_id}/comments [post]
func (h *Handlers) PostComment(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, services.ErrInvalidDataType.Wrap(err))
		return
	}
	in, err := services.ParseNewComment(raw)
	if err != nil {
		respondError(c, err)
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	comment, replayed, err := h.comments.Post(c.Request.Context(), c.Param("article_id"), in, key)
	if err != nil {
		respondError(c, err)
		return
	}
	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusCreated, CommentResponse{Comment: comment})
}

// DeleteComment godoc
// @ID          deleteComment
// @Summary     Delete a comment
// @Tags        Comments
// @Param       comment_id  path  int  true  "Comment ID"
// @Success     204  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid Id type"
// @Failure     404  {object}  handlers.ErrorResponse  "Article not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /comments/{comment_id} [delete]
func (h *Handlers) DeleteComment(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), c.Param("comment_id")); err != nil {
		respondError(c, err)
		return
	}
	noContent(c)
}
