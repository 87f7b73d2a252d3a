package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inkpost/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPostServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:post-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func validInput(author string) PostInput {
	return PostInput{
		PostTitle:       "Hello",
		Audience:        "public",
		Content:         "## Intro\n\nFirst paragraph.\n\n- one\n- two",
		Tags:            []string{"go", "web"},
		Readability:     "simple",
		Tone:            "casual",
		Files:           []string{"https://cdn.example.com/cover.png"},
		Author:          author,
		AuthorAvatarURL: "https://cdn.example.com/" + author + ".png",
	}
}

func TestPostService_CreateAssignsUniqueIDs(t *testing.T) {
	svc := NewPostService(setupPostServiceTestDB(t))
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		post, err := svc.Create(ctx, validInput("alice"))
		if err != nil {
			t.Fatalf("create post: %v", err)
		}
		if post.ID == "" {
			t.Fatalf("expected non-empty id")
		}
		if _, err := uuid.Parse(post.ID); err != nil {
			t.Fatalf("expected uuid id, got %q", post.ID)
		}
		if seen[post.ID] {
			t.Fatalf("duplicate id %s", post.ID)
		}
		seen[post.ID] = true
	}
}

func TestPostService_CreateConcurrentlyNeverCollides(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	// shared-cache sqlite reports table locks under parallel writers
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	svc := NewPostService(gdb)
	ctx := context.Background()

	const workers = 8
	ids := make(chan string, workers)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			post, err := svc.Create(ctx, validInput("carol"))
			if err != nil {
				errs <- err
				return
			}
			ids <- post.ID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create: %v", err)
	}
	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestPostService_CreateRequiresAuthor(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	missingAuthor := validInput("alice")
	missingAuthor.Author = "  "
	if _, err := svc.Create(context.Background(), missingAuthor); !errors.Is(err, ErrAuthorRequired) {
		t.Fatalf("expected ErrAuthorRequired, got %v", err)
	}

	missingAvatar := validInput("alice")
	missingAvatar.AuthorAvatarURL = ""
	if _, err := svc.Create(context.Background(), missingAvatar); !errors.Is(err, ErrAuthorRequired) {
		t.Fatalf("expected ErrAuthorRequired, got %v", err)
	}

	var count int64
	gdb.Model(&db.Post{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no persisted posts, got %d", count)
	}
}

func TestPostService_GetRoundTrip(t *testing.T) {
	svc := NewPostService(setupPostServiceTestDB(t))
	ctx := context.Background()

	input := validInput("alice")
	input.Tags = []string{"x,y,z"}
	input.Files = []string{"https://cdn.example.com/1.png", " ", "https://cdn.example.com/2.png"}

	created, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}

	if got.PostTitle != input.PostTitle || got.Content != input.Content || got.Audience != input.Audience ||
		got.Tone != input.Tone || got.Readability != input.Readability || got.Author != input.Author ||
		got.AuthorAvatarURL != input.AuthorAvatarURL {
		t.Fatalf("fields differ from input: %+v", got)
	}
	if !reflect.DeepEqual(got.Tags, []string{"x", "y", "z"}) {
		t.Fatalf("expected split tags, got %v", got.Tags)
	}
	if !reflect.DeepEqual(got.Files, []string{"https://cdn.example.com/1.png", "https://cdn.example.com/2.png"}) {
		t.Fatalf("unexpected files %v", got.Files)
	}
	if got.FeaturedImage != "https://cdn.example.com/1.png" {
		t.Fatalf("unexpected featured image %q", got.FeaturedImage)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("expected store-assigned timestamps")
	}
	if got.ReadingTime != 1 {
		t.Fatalf("expected reading time 1, got %d", got.ReadingTime)
	}
}

func TestPostService_GetMissing(t *testing.T) {
	svc := NewPostService(setupPostServiceTestDB(t))

	for _, id := range []string{uuid.NewString(), "", "not-a-uuid"} {
		if _, err := svc.Get(context.Background(), id); !errors.Is(err, ErrPostNotFound) {
			t.Fatalf("Get(%q): expected ErrPostNotFound, got %v", id, err)
		}
	}
}

func TestPostService_ListByAuthor(t *testing.T) {
	svc := NewPostService(setupPostServiceTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, validInput("alice")); err != nil {
			t.Fatalf("create alice post: %v", err)
		}
	}
	if _, err := svc.Create(ctx, validInput("bob")); err != nil {
		t.Fatalf("create bob post: %v", err)
	}

	posts, err := svc.ListByAuthor(ctx, "alice")
	if err != nil {
		t.Fatalf("list by author: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	for _, post := range posts {
		if post.Author != "alice" {
			t.Fatalf("unexpected author %q", post.Author)
		}
	}

	none, err := svc.ListByAuthor(ctx, "nobody")
	if err != nil {
		t.Fatalf("list by unknown author: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestPostService_ListFilters(t *testing.T) {
	svc := NewPostService(setupPostServiceTestDB(t))
	ctx := context.Background()

	casual := validInput("alice")
	casual.Tone = "casual"
	casual.Tags = []string{"Go"}
	formal := validInput("bob")
	formal.Tone = "formal"
	formal.Audience = "private"
	formal.Tags = []string{"rust"}

	for _, input := range []PostInput{casual, formal, casual} {
		if _, err := svc.Create(ctx, input); err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	all, err := svc.List(ctx, PostFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(all))
	}

	tests := []struct {
		name   string
		filter PostFilter
		want   int
	}{
		{name: "tone", filter: PostFilter{Field: FilterTone, Value: "casual"}, want: 2},
		{name: "tone case-insensitive", filter: PostFilter{Field: FilterTone, Value: "CASUAL"}, want: 2},
		{name: "audience", filter: PostFilter{Field: FilterAudience, Value: "private"}, want: 1},
		{name: "author", filter: PostFilter{Field: FilterAuthor, Value: "bob"}, want: 1},
		{name: "tag", filter: PostFilter{Field: FilterTag, Value: "go"}, want: 2},
		{name: "no match", filter: PostFilter{Field: FilterReadability, Value: "advanced"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := svc.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(posts) != tt.want {
				t.Fatalf("expected %d posts, got %d", tt.want, len(posts))
			}
			if tt.filter.Field == FilterTone {
				for _, post := range posts {
					if !strings.EqualFold(post.Tone, tt.filter.Value) {
						t.Fatalf("unexpected tone %q", post.Tone)
					}
				}
			}
		})
	}
}

func TestPostService_ListRejectsUnknownField(t *testing.T) {
	svc := NewPostService(setupPostServiceTestDB(t))

	_, err := svc.List(context.Background(), PostFilter{Field: "content; DROP TABLE posts", Value: "x"})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestPostService_StorageFailureIsWrapped(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.Close()

	if _, err := svc.Create(context.Background(), validInput("alice")); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage on create, got %v", err)
	}
	if _, err := svc.List(context.Background(), PostFilter{}); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage on list, got %v", err)
	}
	if _, err := svc.Get(context.Background(), uuid.NewString()); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage on get, got %v", err)
	}
}

func TestCalculateReadingTime(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{content: "", want: 0},
		{content: "   ", want: 0},
		{content: "one two three", want: 1},
		{content: strings.Repeat("word ", 200), want: 1},
		{content: strings.Repeat("word ", 201), want: 2},
	}

	for _, tt := range tests {
		if got := calculateReadingTime(tt.content); got != tt.want {
			t.Fatalf("calculateReadingTime(%d words) = %d, want %d", len(strings.Fields(tt.content)), got, tt.want)
		}
	}
}
