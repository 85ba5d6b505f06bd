package server

import (
	"chronicle/internal/middleware"
	"chronicle/internal/models"
	"chronicle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
//
// Public feed: only publicly visible posts, most recently published first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, defaultPageSize)

	posts, err := s.postService.ListVisiblePosts(ctx, service.ListPostsInput{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
//
// Drafts, scheduled posts and absent IDs all answer 404, for any caller.
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id", "Post")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetVisiblePost(ctx, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	authorID, err := s.parseID(c, "id", "User")
	if err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageSize)

	posts, err := s.postService.ListVisiblePostsByAuthor(ctx, authorID, service.ListPostsInput{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(posts)
}

// GetMyPosts handles GET /api/posts/mine
//
// The caller's own posts in every state, drafts and scheduled included.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, defaultPageSize)

	posts, err := s.postService.ListOwnPosts(ctx, userID, service.ListPostsInput{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var req struct {
		Title       string `json:"title"`
		Body        string `json:"body"`
		IsDraft     bool   `json:"is_draft"`
		PublishedAt string `json:"published_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID:      userID,
		Title:       req.Title,
		Body:        req.Body,
		IsDraft:     req.IsDraft,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	middleware.PostWrites.WithLabelValues("create").Inc()

	return c.Status(fiber.StatusCreated).JSON(models.Envelope{
		Code:    fiber.StatusCreated,
		Message: "Post created successfully.",
		Data:    post,
	})
}

// UpdatePost handles PUT/PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id", "Post")
	if err != nil {
		return nil
	}

	var req struct {
		Title       *string `json:"title"`
		Body        *string `json:"body"`
		IsDraft     *bool   `json:"is_draft"`
		PublishedAt *string `json:"published_at"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:      userID,
		PostID:      postID,
		Title:       req.Title,
		Body:        req.Body,
		IsDraft:     req.IsDraft,
		PublishedAt: req.PublishedAt,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	middleware.PostWrites.WithLabelValues("update").Inc()

	return c.Status(fiber.StatusOK).JSON(models.Envelope{
		Code:    fiber.StatusOK,
		Message: "Post updated successfully.",
		Data:    post,
	})
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id", "Post")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(ctx, userID, postID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	middleware.PostWrites.WithLabelValues("delete").Inc()

	return c.Status(fiber.StatusOK).JSON(models.Envelope{
		Code:    fiber.StatusOK,
		Message: "Post deleted successfully.",
	})
}
