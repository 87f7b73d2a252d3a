package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkpost/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrAuthorRequired = errors.New("author and author avatar are required")
	ErrStorage        = errors.New("storage failure")
)

// PostService is the post store: create and query access over gorm.
type PostService struct {
	db *gorm.DB
}

// PostInput represents fields accepted when creating a post.
type PostInput struct {
	PostTitle       string
	Audience        string
	Content         string
	Tags            []string
	Readability     string
	Tone            string
	Files           []string
	Author          string
	AuthorAvatarURL string
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// Create persists a post together with its tag and file rows.
func (s *PostService) Create(ctx context.Context, input PostInput) (*db.Post, error) {
	author := strings.TrimSpace(input.Author)
	avatar := strings.TrimSpace(input.AuthorAvatarURL)
	if author == "" || avatar == "" {
		return nil, ErrAuthorRequired
	}

	post := db.Post{
		PostTitle:       input.PostTitle,
		Audience:        input.Audience,
		Content:         input.Content,
		Readability:     input.Readability,
		Tone:            input.Tone,
		ReadingTime:     calculateReadingTime(input.Content),
		Author:          author,
		AuthorAvatarURL: avatar,
	}
	post.SetTags(NormalizeTags(input.Tags...))
	post.SetFiles(normalizeFiles(input.Files))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, storageError(err)
	}

	post.PopulateDerivedFields()
	return &post, nil
}

// Get fetches a post by id with its tags and files.
func (s *PostService) Get(ctx context.Context, id string) (*db.Post, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, ErrPostNotFound
	}

	var post db.Post
	err := s.withChildren(ctx).Where("posts.id = ?", trimmed).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, storageError(err)
	}

	post.PopulateDerivedFields()
	return &post, nil
}

// ListByAuthor returns every post whose author equals the given name.
// The result is empty, never nil, when nothing matches.
func (s *PostService) ListByAuthor(ctx context.Context, author string) ([]db.Post, error) {
	posts := make([]db.Post, 0)
	err := s.withChildren(ctx).
		Where("posts.author = ?", strings.TrimSpace(author)).
		Order("posts.created_at desc").
		Find(&posts).Error
	if err != nil {
		return nil, storageError(err)
	}
	return populate(posts), nil
}

// List returns all posts, narrowed by the filter when one is set.
func (s *PostService) List(ctx context.Context, filter PostFilter) ([]db.Post, error) {
	query, err := s.applyFilter(s.withChildren(ctx), filter)
	if err != nil {
		return nil, err
	}

	posts := make([]db.Post, 0)
	if err := query.Order("posts.created_at desc").Find(&posts).Error; err != nil {
		return nil, storageError(err)
	}
	return populate(posts), nil
}

func (s *PostService) withChildren(ctx context.Context) *gorm.DB {
	byPosition := func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	}
	return s.db.WithContext(ctx).
		Model(&db.Post{}).
		Preload("TagRows", byPosition).
		Preload("FileRows", byPosition)
}

func (s *PostService) applyFilter(query *gorm.DB, filter PostFilter) (*gorm.DB, error) {
	if filter.IsZero() {
		return query, nil
	}

	switch filter.Field {
	case FilterTag:
		return query.Where(
			"EXISTS (SELECT 1 FROM post_tags WHERE post_tags.post_id = posts.id AND LOWER(post_tags.name) = LOWER(?))",
			filter.Value,
		), nil
	default:
		column, ok := filterColumns[filter.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter.Field)
		}
		return query.Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", column), filter.Value), nil
	}
}

func populate(posts []db.Post) []db.Post {
	for i := range posts {
		posts[i].PopulateDerivedFields()
	}
	return posts
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

func normalizeFiles(files []string) []string {
	urls := make([]string, 0, len(files))
	for _, raw := range files {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		urls = append(urls, trimmed)
	}
	return urls
}

// calculateReadingTime estimates minutes at 200 words per minute, at least one for non-empty content.
func calculateReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}

	minutes := words / 200
	if words%200 != 0 {
		minutes++
	}
	return minutes
}
