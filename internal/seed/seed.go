// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"chronicle/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Run populates the database with users and a realistic mix of draft,
// scheduled and live posts.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.ShouldClean {
		if err := db.Exec("TRUNCATE TABLE posts, users RESTART IDENTITY CASCADE").Error; err != nil {
			return fmt.Errorf("failed to clean tables: %w", err)
		}
	}

	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = opts.NumUsers * 5
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("Chronicle-Dev-Pass1!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    fmt.Sprintf("seed%d.%s", i, gofakeit.Email()),
			Password: string(hashed),
			Bio:      gofakeit.Sentence(10),
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create seed user: %w", err)
		}
		users = append(users, user)
	}

	now := time.Now()
	for i := 0; i < opts.NumPosts; i++ {
		user := users[r.Intn(len(users))]
		post := &models.Post{
			Title:  gofakeit.Sentence(5),
			Body:   gofakeit.Paragraph(2, 4, 8, "\n\n"),
			UserID: user.ID,
		}

		// Roughly: 20% drafts, 20% scheduled, 60% live.
		switch roll := r.Intn(10); {
		case roll < 2:
			post.IsDraft = true
		case roll < 4:
			at := now.Add(time.Duration(1+r.Intn(14*24)) * time.Hour)
			post.PublishedAt = &at
		default:
			at := now.Add(-time.Duration(1+r.Intn(90*24)) * time.Hour)
			post.PublishedAt = &at
		}

		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("failed to create seed post: %w", err)
		}
	}

	return nil
}
