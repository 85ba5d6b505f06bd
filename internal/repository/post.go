// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"time"

	"chronicle/internal/cache"
	"chronicle/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
//
// Read methods taking a `now` argument apply the public-visibility filter
// (not a draft, publish instant passed) against that instant; callers pass
// the current time so visibility is recomputed on every read instead of
// being stored as a state transition.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error)
	ListVisible(ctx context.Context, now time.Time, limit, offset int) ([]*models.Post, error)
	ListVisibleByUserID(ctx context.Context, userID uint, now time.Time, limit, offset int) ([]*models.Post, error)
	ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// visibleAt narrows a query to publicly visible posts at the given instant.
func visibleAt(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Where("is_draft = ? AND published_at IS NOT NULL AND published_at <= ?", false, now)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePostsList(ctx)
	}
	return err
}

// GetByID fetches a post in any publication state. Owner-facing paths
// (update, delete, own-post listings) use this; public reads go through
// GetVisibleByID.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	// A cached entry is always a post that was already live, and live posts
	// only move their publish instant forward; updates and deletes
	// invalidate the key, so serving from cache cannot resurrect a hidden
	// post.
	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		return visibleAt(r.db.WithContext(ctx), now).
			Preload("User").
			First(&post, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListVisible(ctx context.Context, now time.Time, limit, offset int) ([]*models.Post, error) {
	// Initialized so an empty page serializes as [] rather than null.
	posts := []*models.Post{}
	fetch := func() error {
		return visibleAt(r.db.WithContext(ctx), now).
			Preload("User").
			Order("published_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&posts).Error
	}

	// Only the canonical first page is cached; it carries nearly all feed
	// traffic. The short TTL bounds how long a freshly-live scheduled post
	// can be missing from the cached page.
	if offset == 0 && limit == cache.FirstPageLimit {
		if err := cache.Aside(ctx, cache.PostsListKey, &posts, cache.ListTTL, fetch); err != nil {
			return nil, err
		}
		return posts, nil
	}

	if err := fetch(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListVisibleByUserID(ctx context.Context, userID uint, now time.Time, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := visibleAt(r.db.WithContext(ctx), now).
		Preload("User").
		Where("user_id = ?", userID).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByUserID returns all of a user's posts regardless of publication
// state, newest first. Only the owner-facing listing uses this.
func (r *postRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidatePostsList(ctx)
	return nil
}
