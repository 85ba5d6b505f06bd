// Package service holds the business rules sitting between handlers and
// repositories.
package service

import (
	"context"
	"errors"
	"time"

	"chronicle/internal/authz"
	"chronicle/internal/models"
	"chronicle/internal/repository"

	"gorm.io/gorm"
)

const (
	maxTitleLen = 300
	maxBodyLen  = 50000
)

// PostService enforces the publication-state lifecycle for posts:
// draft posts carry no publish instant, live posts never move their publish
// instant backwards, and a post that has left the draft state never returns
// to it. Attempts to violate the last two rules are silently dropped from
// the payload rather than rejected.
type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

// NewPostService returns a PostService using the wall clock.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		now:      time.Now,
	}
}

// CreatePostInput is the allow-list of fields creation accepts. The owner
// always comes from the authenticated caller, never from the payload.
type CreatePostInput struct {
	UserID      uint
	Title       string
	Body        string
	IsDraft     bool
	PublishedAt string // RFC 3339; empty means unscheduled
}

// UpdatePostInput is the allow-list of fields update accepts. Nil pointers
// mean the field was absent from the payload.
type UpdatePostInput struct {
	UserID      uint
	PostID      uint
	Title       *string
	Body        *string
	IsDraft     *bool
	PublishedAt *string // RFC 3339
}

// ListPostsInput bounds a paginated listing.
type ListPostsInput struct {
	Limit  int
	Offset int
}

// CreatePost validates the payload and persists a new post owned by
// in.UserID. Draft posts have their publish instant forced to nil no matter
// what the caller supplied.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Body == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxBodyLen {
		return nil, models.NewValidationError("Body too long (max 50000 characters)")
	}

	var publishedAt *time.Time
	if in.PublishedAt != "" {
		ts, err := parsePublishedAt(in.PublishedAt)
		if err != nil {
			return nil, err
		}
		publishedAt = ts
	}

	// Drafts are never scheduled, whatever the payload said.
	if in.IsDraft {
		publishedAt = nil
	}

	post := &models.Post{
		Title:       in.Title,
		Body:        in.Body,
		IsDraft:     in.IsDraft,
		PublishedAt: publishedAt,
		UserID:      in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	// Re-fetch so the response carries the owner.
	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

// GetVisiblePost returns the post only if it is publicly visible right now.
// Drafts, scheduled posts and absent IDs are all reported as not-found so
// callers cannot probe for the existence of hidden posts.
func (s *PostService) GetVisiblePost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetVisibleByID(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// ListVisiblePosts returns the public feed: visible posts ordered by publish
// instant, most recent first.
func (s *PostService) ListVisiblePosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	posts, err := s.postRepo.ListVisible(ctx, s.now(), in.Limit, in.Offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListVisiblePostsByAuthor returns an author's visible posts, most recently
// published first.
func (s *PostService) ListVisiblePostsByAuthor(ctx context.Context, authorID uint, in ListPostsInput) ([]*models.Post, error) {
	posts, err := s.postRepo.ListVisibleByUserID(ctx, authorID, s.now(), in.Limit, in.Offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListOwnPosts returns every post belonging to the caller, drafts and
// scheduled posts included.
func (s *PostService) ListOwnPosts(ctx context.Context, userID uint, in ListPostsInput) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByUserID(ctx, userID, in.Limit, in.Offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// UpdatePost applies a partial payload to an existing post owned by
// in.UserID. Rules run in order: parse published_at (malformed values are a
// validation error), drop back-dating attempts on live posts, drop is_draft
// on posts that already left the draft state, then apply and persist.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}

	if !authz.Can(in.UserID, post, authz.CapabilityUpdate) {
		return nil, models.NewAuthorizationError("You can only update your own posts")
	}

	var publishedAt *time.Time
	if in.PublishedAt != nil {
		publishedAt, err = parsePublishedAt(*in.PublishedAt)
		if err != nil {
			return nil, err
		}
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		if len(*in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
	}
	if in.Body != nil {
		if *in.Body == "" {
			return nil, models.NewValidationError("Body cannot be empty")
		}
		if len(*in.Body) > maxBodyLen {
			return nil, models.NewValidationError("Body too long (max 50000 characters)")
		}
	}

	now := s.now()

	// A live post cannot be back-dated: an earlier publish instant is
	// dropped from the payload, not rejected.
	if post.VisibleAt(now) && publishedAt != nil && publishedAt.Before(*post.PublishedAt) {
		publishedAt = nil
	}

	// A post that left the draft state can never return to it.
	if !post.IsDraft {
		in.IsDraft = nil
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Body != nil {
		post.Body = *in.Body
	}
	if in.IsDraft != nil {
		post.IsDraft = *in.IsDraft
	}
	if publishedAt != nil {
		post.PublishedAt = publishedAt
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	updated, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return updated, nil
}

// DeletePost permanently removes a post owned by the caller. There is no
// undo and no soft-delete.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}

	if !authz.Can(userID, post, authz.CapabilityDelete) {
		return models.NewAuthorizationError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// parsePublishedAt parses an RFC 3339 timestamp from a payload.
func parsePublishedAt(value string) (*time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, models.NewValidationError("published_at must be a valid RFC 3339 timestamp")
	}
	return &ts, nil
}
