package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/db"
)

// 创建本地登录账号，已存在时只补齐头像
func main() {
	username := flag.String("username", "admin", "login name")
	password := flag.String("password", "admin123", "login password")
	imageURL := flag.String("image-url", "", "avatar url")
	flag.Parse()

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

	if err := db.EnsureUser(gdb, *username, *password, *imageURL); err != nil {
		log.Fatal("创建用户失败:", err)
	}

	fmt.Println("用户已就绪")
	fmt.Println("用户名:", *username)
}
