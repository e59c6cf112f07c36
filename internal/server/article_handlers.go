package server

import (
	"knowhere/internal/models"
	"knowhere/internal/service"

	"github.com/gofiber/fiber/v2"
)

type articleRequest struct {
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle"`
	Content       string   `json:"content"`
	Slug          string   `json:"slug"`
	FeaturedImage string   `json:"featured_image"`
	Tags          []string `json:"tags"`
	ReadTime      int      `json:"read_time"`
	Published     bool     `json:"published"`
}

type articlePatchRequest struct {
	Title         *string   `json:"title"`
	Subtitle      *string   `json:"subtitle"`
	Content       *string   `json:"content"`
	Slug          *string   `json:"slug"`
	FeaturedImage *string   `json:"featured_image"`
	Tags          *[]string `json:"tags"`
	Published     *bool     `json:"published"`
}

// ViewerState is the caller's relationship to an article.
type ViewerState struct {
	Claps           int  `json:"claps"`
	Saved           bool `json:"saved"`
	FollowingAuthor bool `json:"following_author"`
}

// ArticleResponse is an article plus, for signed-in readers, their viewer state.
type ArticleResponse struct {
	Article *models.Article `json:"article"`
	Viewer  *ViewerState    `json:"viewer,omitempty"`
}

// ListArticles handles GET /api/articles
// @Summary List published articles
// @Tags articles
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Article
// @Router /articles [get]
func (s *Server) ListArticles(c *fiber.Ctx) error {
	articles, err := s.articles.ListPublished(c.UserContext(), parsePagination(c, defaultPageLimit).input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(articles)
}

// SearchArticles handles GET /api/articles/search?q=...
// @Summary Search published articles
// @Tags articles
// @Produce json
// @Param q query string false "Search text"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Article
// @Router /articles/search [get]
func (s *Server) SearchArticles(c *fiber.Ctx) error {
	articles, err := s.articles.Search(c.UserContext(), c.Query("q"), parsePagination(c, defaultPageLimit).input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(articles)
}

// ListArticlesByTag handles GET /api/articles/tag/:tag
// @Summary List published articles with a tag
// @Tags articles
// @Produce json
// @Param tag path string true "Tag"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Article
// @Router /articles/tag/{tag} [get]
func (s *Server) ListArticlesByTag(c *fiber.Ctx) error {
	articles, err := s.articles.ListByTag(c.UserContext(), c.Params("tag"), parsePagination(c, defaultPageLimit).input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(articles)
}

// GetArticle handles GET /api/articles/:slug. Drafts are only visible to their author.
// @Summary Get an article by slug
// @Tags articles
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} ArticleResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{slug} [get]
func (s *Server) GetArticle(c *fiber.Ctx) error {
	ctx := c.UserContext()
	slug := c.Params("slug")
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return respondError(c, err)
	}

	caller := callerID(c)
	if !article.Published && article.AuthorID != caller {
		return respondError(c, models.NewNotFoundError("Article", slug))
	}

	resp := ArticleResponse{Article: article}
	if caller == "" {
		return c.JSON(resp)
	}

	viewer := &ViewerState{}
	clap, found, err := s.claps.GetUserClap(ctx, article.ID, caller)
	if err != nil {
		return respondError(c, err)
	}
	if found {
		viewer.Claps = clap.Count
	}
	if viewer.Saved, err = s.saved.IsSaved(ctx, caller, article.ID); err != nil {
		return respondError(c, err)
	}
	if viewer.FollowingAuthor, err = s.follows.IsFollowing(ctx, caller, article.AuthorID); err != nil {
		return respondError(c, err)
	}
	resp.Viewer = viewer
	return c.JSON(resp)
}

// CreateArticle handles POST /api/articles
// @Summary Create an article
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body articleRequest true "Article"
// @Success 201 {object} models.Article
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /articles [post]
func (s *Server) CreateArticle(c *fiber.Ctx) error {
	var req articleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	caller := callerID(c)
	article, err := s.articles.Create(c.UserContext(), caller, service.CreateArticleInput{
		Title:         req.Title,
		Subtitle:      req.Subtitle,
		Content:       req.Content,
		Slug:          req.Slug,
		FeaturedImage: req.FeaturedImage,
		Tags:          req.Tags,
		ReadTime:      req.ReadTime,
		Published:     req.Published,
	})
	if err != nil {
		return respondError(c, err)
	}

	if article.Published {
		s.publishArticlePublished(c.UserContext(), article)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// UpdateArticle handles PATCH /api/articles/:id
// @Summary Update an article
// @Tags articles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Param request body articlePatchRequest true "Changed fields"
// @Success 200 {object} models.Article
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /articles/{id} [patch]
func (s *Server) UpdateArticle(c *fiber.Ctx) error {
	var req articlePatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	res, err := s.articles.Update(c.UserContext(), callerID(c), c.Params("id"), service.UpdateArticleInput{
		Title:         req.Title,
		Subtitle:      req.Subtitle,
		Content:       req.Content,
		Slug:          req.Slug,
		FeaturedImage: req.FeaturedImage,
		Tags:          req.Tags,
		Published:     req.Published,
	})
	if err != nil {
		return respondError(c, err)
	}

	if res.JustPublished {
		s.publishArticlePublished(c.UserContext(), res.Article)
	}
	return c.JSON(res.Article)
}

// DeleteArticle handles DELETE /api/articles/:id
// @Summary Delete an article with its claps, comments and bookmarks
// @Tags articles
// @Security BearerAuth
// @Param id path string true "Article ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /articles/{id} [delete]
func (s *Server) DeleteArticle(c *fiber.Ctx) error {
	if err := s.articles.Remove(c.UserContext(), callerID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func articlePayload(a *models.Article) map[string]any {
	return map[string]any{
		"slug":           a.Slug,
		"title":          a.Title,
		"author_id":      a.AuthorID,
		"claps_count":    a.ClapsCount,
		"comments_count": a.CommentsCount,
	}
}
