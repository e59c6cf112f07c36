package server

import (
	"knowhere/internal/models"
	"knowhere/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ClapResponse is the caller's clap row and the article's new total.
type ClapResponse struct {
	Clap       *models.Clap `json:"clap"`
	ClapsCount int          `json:"claps_count"`
}

// CommentResponse is the stored comment and the article's new total.
type CommentResponse struct {
	Comment       *models.Comment `json:"comment"`
	CommentsCount int             `json:"comments_count"`
}

// ClapArticle handles POST /api/articles/:id/clap
// @Summary Clap for an article
// @Description Each call adds one clap; a reader keeps a single clap row.
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Success 200 {object} ClapResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} object{error=string}
// @Router /articles/{id}/clap [post]
func (s *Server) ClapArticle(c *fiber.Ctx) error {
	caller := callerID(c)
	res, err := s.claps.Clap(c.UserContext(), c.Params("id"), caller)
	if err != nil {
		return respondError(c, err)
	}

	s.publishEngagement(c.UserContext(), s.eventFor(EventClap, res.Article, caller))
	return c.JSON(ClapResponse{Clap: res.Clap, ClapsCount: res.Article.ClapsCount})
}

// GetMyClap handles GET /api/articles/:id/clap
// @Summary Get the caller's clap on an article
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Success 200 {object} object{clap=models.Clap,count=int}
// @Router /articles/{id}/clap [get]
func (s *Server) GetMyClap(c *fiber.Ctx) error {
	clap, found, err := s.claps.GetUserClap(c.UserContext(), c.Params("id"), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	if !found {
		return c.JSON(fiber.Map{"clap": nil, "count": 0})
	}
	return c.JSON(fiber.Map{"clap": clap, "count": clap.Count})
}

// ListComments handles GET /api/articles/:id/comments
// @Summary List an article's comments, oldest first
// @Description Comments on a draft are only listed for its author.
// @Tags engagement
// @Produce json
// @Param id path string true "Article ID"
// @Param limit query int false "Page size (default 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id}/comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	comments, err := s.comments.ListForArticle(c.UserContext(), c.Params("id"), callerID(c), parsePagination(c, maxPaginationLimit).input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/articles/:id/comments
// @Summary Comment on an article
// @Tags engagement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Param request body object{content=string,parent_id=string} true "Comment"
// @Success 201 {object} CommentResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Content  string  `json:"content"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	caller := callerID(c)
	res, err := s.comments.Add(c.UserContext(), caller, service.AddCommentInput{
		ArticleID: c.Params("id"),
		Content:   req.Content,
		ParentID:  req.ParentID,
	})
	if err != nil {
		return respondError(c, err)
	}

	ev := s.eventFor(EventComment, res.Article, caller)
	ev.Payload["comment_id"] = res.Comment.ID
	s.publishEngagement(c.UserContext(), ev)

	return c.Status(fiber.StatusCreated).JSON(CommentResponse{
		Comment:       res.Comment,
		CommentsCount: res.Article.CommentsCount,
	})
}

// SaveArticle handles POST /api/articles/:id/save
// @Summary Add an article to the caller's reading list
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Success 201 {object} models.SavedArticle
// @Failure 409 {object} models.ErrorResponse
// @Router /articles/{id}/save [post]
func (s *Server) SaveArticle(c *fiber.Ctx) error {
	saved, err := s.saved.Save(c.UserContext(), callerID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// UnsaveArticle handles DELETE /api/articles/:id/save
// @Summary Remove an article from the caller's reading list
// @Tags engagement
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Success 204
// @Router /articles/{id}/save [delete]
func (s *Server) UnsaveArticle(c *fiber.Ctx) error {
	if err := s.saved.Unsave(c.UserContext(), callerID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
