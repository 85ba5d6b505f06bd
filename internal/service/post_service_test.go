package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chronicle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn              func(context.Context, *models.Post) error
	getByIDFn             func(context.Context, uint) (*models.Post, error)
	getVisibleByIDFn      func(context.Context, uint, time.Time) (*models.Post, error)
	listVisibleFn         func(context.Context, time.Time, int, int) ([]*models.Post, error)
	listVisibleByUserIDFn func(context.Context, uint, time.Time, int, int) ([]*models.Post, error)
	listByUserIDFn        func(context.Context, uint, int, int) ([]*models.Post, error)
	updateFn              func(context.Context, *models.Post) error
	deleteFn              func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	return s.getVisibleByIDFn(ctx, id, now)
}
func (s *postRepoStub) ListVisible(ctx context.Context, now time.Time, limit, offset int) ([]*models.Post, error) {
	return s.listVisibleFn(ctx, now, limit, offset)
}
func (s *postRepoStub) ListVisibleByUserID(ctx context.Context, userID uint, now time.Time, limit, offset int) ([]*models.Post, error) {
	return s.listVisibleByUserIDFn(ctx, userID, now, limit, offset)
}
func (s *postRepoStub) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByUserIDFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:         func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:        func(_ context.Context, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		getVisibleByIDFn: func(_ context.Context, _ uint, _ time.Time) (*models.Post, error) { return &models.Post{}, nil },
		listVisibleFn:    func(_ context.Context, _ time.Time, _, _ int) ([]*models.Post, error) { return nil, nil },
		listVisibleByUserIDFn: func(_ context.Context, _ uint, _ time.Time, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		listByUserIDFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
	}
}

// testNow is the fixed clock all lifecycle tests run against.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *postRepoStub) *PostService {
	return &PostService{
		postRepo: repo,
		now:      func() time.Time { return testNow },
	}
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(noopPostRepo())
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{
			name:  "empty title",
			input: CreatePostInput{UserID: 1, Body: "some body"},
		},
		{
			name:  "title too long",
			input: CreatePostInput{UserID: 1, Title: strings.Repeat("x", 301), Body: "b"},
		},
		{
			name:  "empty body",
			input: CreatePostInput{UserID: 1, Title: "T"},
		},
		{
			name:  "body too long",
			input: CreatePostInput{UserID: 1, Title: "T", Body: strings.Repeat("x", 50001)},
		},
		{
			name:  "malformed published_at",
			input: CreatePostInput{UserID: 1, Title: "T", Body: "b", PublishedAt: "next tuesday"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreatePost(ctx, tc.input)
			assertAppErrorCode(t, err, models.CodeValidation)
		})
	}
}

func TestPostService_CreatePost_DraftDropsPublishedAt(t *testing.T) {
	t.Parallel()

	var created *models.Post
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, post *models.Post) error {
		post.ID = 1
		created = post
		return nil
	}
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return created, nil }
	svc := newTestService(repo)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:      1,
		Title:       "Draft with a date",
		Body:        "b",
		IsDraft:     true,
		PublishedAt: "2025-07-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.True(t, post.IsDraft)
	assert.Nil(t, post.PublishedAt, "drafts must never carry a publish instant")
}

func TestPostService_CreatePost_ScheduledKeepsPublishedAt(t *testing.T) {
	t.Parallel()

	var created *models.Post
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, post *models.Post) error {
		post.ID = 1
		created = post
		return nil
	}
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return created, nil }
	svc := newTestService(repo)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:      1,
		Title:       "Scheduled",
		Body:        "b",
		PublishedAt: "2025-07-01T00:00:00Z",
	})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), post.PublishedAt.UTC())
	assert.False(t, post.VisibleAt(testNow), "future publish instant must not be visible yet")
}

func TestPostService_GetVisiblePost_NotFound(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getVisibleByIDFn = func(_ context.Context, _ uint, _ time.Time) (*models.Post, error) {
		return nil, gorm.ErrRecordNotFound
	}
	svc := newTestService(repo)

	_, err := svc.GetVisiblePost(context.Background(), 42)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestPostService_UpdatePost_Ownership(t *testing.T) {
	t.Parallel()

	t.Run("non-owner cannot update", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, UserID: 10}, nil
		}
		svc := newTestService(repo)
		title := "new"
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 1, Title: &title})
		assertAppErrorCode(t, err, models.CodeAuthorization)
	})

	t.Run("missing post is not found, not forbidden", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := newTestService(repo)
		title := "new"
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 99, Title: &title})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("owner can update title", func(t *testing.T) {
		t.Parallel()
		stored := &models.Post{ID: 1, UserID: 1, Title: "old", Body: "b"}
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return stored, nil }
		svc := newTestService(repo)
		title := "new"
		post, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 1, Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "new", post.Title)
	})
}

func TestPostService_UpdatePost_Validation(t *testing.T) {
	t.Parallel()

	stored := func() *models.Post {
		return &models.Post{ID: 1, UserID: 1, Title: "old", Body: "b"}
	}

	tests := []struct {
		name  string
		input UpdatePostInput
	}{
		{
			name:  "empty title",
			input: UpdatePostInput{UserID: 1, PostID: 1, Title: ptr("")},
		},
		{
			name:  "title too long",
			input: UpdatePostInput{UserID: 1, PostID: 1, Title: ptr(strings.Repeat("x", 301))},
		},
		{
			name:  "empty body",
			input: UpdatePostInput{UserID: 1, PostID: 1, Body: ptr("")},
		},
		{
			name:  "malformed published_at",
			input: UpdatePostInput{UserID: 1, PostID: 1, PublishedAt: ptr("2025-13-45")},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			repo := noopPostRepo()
			repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return stored(), nil }
			svc := newTestService(repo)
			_, err := svc.UpdatePost(context.Background(), tc.input)
			assertAppErrorCode(t, err, models.CodeValidation)
		})
	}
}

func TestPostService_UpdatePost_LivePostCannotBackdate(t *testing.T) {
	t.Parallel()

	livePublishedAt := testNow.Add(-24 * time.Hour)
	stored := &models.Post{ID: 1, UserID: 1, Title: "live", Body: "b", PublishedAt: &livePublishedAt}
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return stored, nil }
	svc := newTestService(repo)

	earlier := livePublishedAt.Add(-48 * time.Hour).Format(time.RFC3339)
	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:      1,
		PostID:      1,
		PublishedAt: &earlier,
	})
	require.NoError(t, err, "back-dating is dropped, not rejected")
	require.NotNil(t, post.PublishedAt)
	assert.True(t, post.PublishedAt.Equal(livePublishedAt), "publish instant must be unchanged")
}

func TestPostService_UpdatePost_LivePostCanMoveForward(t *testing.T) {
	t.Parallel()

	livePublishedAt := testNow.Add(-24 * time.Hour)
	stored := &models.Post{ID: 1, UserID: 1, Title: "live", Body: "b", PublishedAt: &livePublishedAt}
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return stored, nil }
	svc := newTestService(repo)

	later := testNow.Add(72 * time.Hour)
	laterStr := later.Format(time.RFC3339)
	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:      1,
		PostID:      1,
		PublishedAt: &laterStr,
	})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.True(t, post.PublishedAt.Equal(later), "moving the publish instant forward is allowed")
}

func TestPostService_UpdatePost_LivePostCannotRedraft(t *testing.T) {
	t.Parallel()

	livePublishedAt := testNow.Add(-24 * time.Hour)
	stored := &models.Post{ID: 1, UserID: 1, Title: "live", Body: "b", PublishedAt: &livePublishedAt}
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return stored, nil }
	svc := newTestService(repo)

	redraft := true
	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:  1,
		PostID:  1,
		IsDraft: &redraft,
	})
	require.NoError(t, err, "re-drafting is dropped, not rejected")
	assert.False(t, post.IsDraft, "a post that left the draft state never returns to it")
}

func TestPostService_UpdatePost_ScheduledPostCanBackdate(t *testing.T) {
	t.Parallel()

	// Scheduled (future publish instant) posts are not yet visible, so the
	// back-dating rule does not apply to them.
	futurePublishedAt := testNow.Add(24 * time.Hour)
	stored := &models.Post{ID: 1, UserID: 1, Title: "scheduled", Body: "b", PublishedAt: &futurePublishedAt}
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return stored, nil }
	svc := newTestService(repo)

	earlier := testNow.Add(-1 * time.Hour)
	earlierStr := earlier.Format(time.RFC3339)
	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:      1,
		PostID:      1,
		PublishedAt: &earlierStr,
	})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	assert.True(t, post.PublishedAt.Equal(earlier))
	assert.True(t, post.VisibleAt(testNow), "pulling the instant into the past makes it live")
}

func TestPostService_UpdatePost_DraftCanPublish(t *testing.T) {
	t.Parallel()

	stored := &models.Post{ID: 1, UserID: 1, Title: "draft", Body: "b", IsDraft: true}
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return stored, nil }
	svc := newTestService(repo)

	publish := false
	when := testNow.Add(-1 * time.Minute).Format(time.RFC3339)
	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:      1,
		PostID:      1,
		IsDraft:     &publish,
		PublishedAt: &when,
	})
	require.NoError(t, err)
	assert.False(t, post.IsDraft)
	assert.True(t, post.VisibleAt(testNow))
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	t.Run("owner can delete", func(t *testing.T) {
		t.Parallel()
		deleted := false
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, UserID: 1}, nil
		}
		repo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := newTestService(repo)
		err := svc.DeletePost(context.Background(), 1, 1)
		assert.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, UserID: 10}, nil
		}
		svc := newTestService(repo)
		err := svc.DeletePost(context.Background(), 1, 1)
		assertAppErrorCode(t, err, models.CodeAuthorization)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := newTestService(repo)
		err := svc.DeletePost(context.Background(), 1, 99)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func ptr[T any](v T) *T { return &v }
