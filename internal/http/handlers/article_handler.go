// Article HTTP handlers.
//
//   - GET   /articles               (list; sort_by, order, topic)
//   - GET   /articles/{article_id}  (one article with body)
//   - PATCH /articles/{article_id}  (adjust votes)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/services"
)

// ListArticlesResponse wraps the article listing.
type ListArticlesResponse struct {
	Articles []domain.ArticleSummary `json:"articles"`
}

// ArticleResponse wraps a single article.
type ArticleResponse struct {
	Article *domain.Article `json:"article"`
}

// PatchArticleRequest documents the vote patch body.
type PatchArticleRequest struct {
	IncVotes int `json:"inc_votes" example:"1"`
}

// ListArticles godoc
// @ID          listArticles
// @Summary     List articles
// @Description Returns every article (without body) with its comment_count.
// @Description Unknown topics yield an empty list.
// @Tags        Articles
// @Produce     json
// @Param       sort_by  query  string  false  "Sort column"     Enums(author, title, article_id, topic, created_at, votes, comment_count)  default(created_at)
// @Param       order    query  string  false  "Sort direction"  Enums(ASC, DESC, asc, desc)  default(DESC)
// @Param       topic    query  string  false  "Topic slug filter"
// @Success     200  {object}  handlers.ListArticlesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid sort query / Invalid order query"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /articles [get]
func (h *Handlers) ListArticles(c *gin.Context) {
	articles, err := h.articles.List(c.Request.Context(), c.Query("sort_by"), c.Query("order"), c.Query("topic"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ListArticlesResponse{Articles: articles})
}

// GetArticle godoc
// @ID          getArticle
// @Summary     Get an article
// @Tags        Articles
// @Produce     json
// @Param       article_id  path  int  true  "Article ID"
// @Success     200  {object}  handlers.ArticleResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid Id type"
// @Failure     404  {object}  handlers.ErrorResponse  "Article not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /articles/{article_id} [get]
func (h *Handlers) GetArticle(c *gin.Context) {
	a, err := h.articles.Get(c.Request.Context(), c.Param("article_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ArticleResponse{Article: a})
}

// PatchArticle godoc
// @ID          patchArticle
// @Summary     Adjust article votes
// @Description Adds inc_votes (may be zero or negative) to the article's votes.
// @Tags        Articles
// @Accept      json
// @Produce     json
// @Param       article_id  path  int                           true  "Article ID"
// @Param       body        body  handlers.PatchArticleRequest  true  "Vote delta"
// @Success     200  {object}  handlers.ArticleResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing required fields / Invalid Id type / Invalid data type"
// @Failure     404  {object}  handlers.ErrorResponse  "Article not found"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /articles/{article_id} [patch]
func (h *Handlers) PatchArticle(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, services.ErrInvalidDataType.Wrap(err))
		return
	}
	inc, err := services.ParseVotePatch(raw)
	if err != nil {
		respondError(c, err)
		return
	}
	a, err := h.articles.Vote(c.Request.Context(), c.Param("article_id"), inc)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ArticleResponse{Article: a})
}
