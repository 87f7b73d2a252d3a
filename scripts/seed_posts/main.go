package main

import (
	"context"
	"fmt"
	"log"

	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/db"
	"github.com/inkpost/internal/service"
	"gorm.io/gorm"
)

// 测试数据生成器
func main() {
	cfg := config.Load()
	if err := db.Init(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseURL,
	}); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}
	gdb, err := db.Get()
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	created, err := seedPosts(context.Background(), gdb)
	if err != nil {
		log.Fatal("生成文章失败:", err)
	}
	fmt.Printf("测试数据生成完成！新增文章 %d 篇\n", created)
}

var seedAuthors = []struct {
	username string
	imageURL string
}{
	{"alice", "https://images.example.com/avatars/alice.png"},
	{"bob", "https://images.example.com/avatars/bob.png"},
}

var seedInputs = []service.PostInput{
	{
		PostTitle:   "Getting started with Go modules",
		Audience:    "public",
		Content:     "## Why modules\n\nModules pin every dependency.\n\n- go mod init\n- go mod tidy",
		Tags:        []string{"go", "tooling"},
		Readability: "simple",
		Tone:        "informative",
		Files:       []string{"https://images.example.com/posts/modules.jpg"},
	},
	{
		PostTitle:   "A slow Sunday",
		Audience:    "followers",
		Content:     "## Morning\n\nCoffee, a book and no plans.",
		Tags:        []string{"life"},
		Readability: "simple",
		Tone:        "casual",
	},
	{
		PostTitle:   "Designing list filters",
		Audience:    "public",
		Content:     "## Filters\n\nOnly known columns are filterable.\n\n- audience\n- tone\n- readability",
		Tags:        []string{"api", "design"},
		Readability: "advanced",
		Tone:        "formal",
		Files:       []string{"https://images.example.com/posts/filters.png", "https://images.example.com/posts/filters-2.png"},
	},
}

// seedPosts 为每位作者写入一组示例文章，已有文章的作者会被跳过
func seedPosts(ctx context.Context, gdb *gorm.DB) (int, error) {
	posts := service.NewPostService(gdb)
	created := 0

	for _, author := range seedAuthors {
		existing, err := posts.ListByAuthor(ctx, author.username)
		if err != nil {
			return created, err
		}
		if len(existing) > 0 {
			fmt.Printf("%s 已有文章，跳过\n", author.username)
			continue
		}

		for _, input := range seedInputs {
			input.Author = author.username
			input.AuthorAvatarURL = author.imageURL
			if _, err := posts.Create(ctx, input); err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}
