package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotInitialized is returned by Get before Init has succeeded.
var ErrNotInitialized = errors.New("database not initialized")

// Options selects the backing store.
type Options struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	// Path is the sqlite file; empty falls back to inkpost.db.
	Path string
	// DSN is the postgres connection string.
	DSN string
	// LogLevel for gorm; zero means Warn.
	LogLevel logger.LogLevel
}

var (
	handle   *gorm.DB
	initErr  error
	initOnce sync.Once
)

// Init 打开进程级共享的数据库连接并执行自动迁移，只会真正执行一次。
// 之后的调用直接返回第一次的结果，连接通过 Get 读取。
func Init(opts Options) error {
	initOnce.Do(func() {
		gdb, err := Open(opts)
		if err != nil {
			initErr = err
			return
		}
		if err := Migrate(gdb); err != nil {
			initErr = err
			return
		}
		handle = gdb
	})
	return initErr
}

// Get returns the shared handle opened by Init.
func Get() (*gorm.DB, error) {
	if handle == nil {
		if initErr != nil {
			return nil, initErr
		}
		return nil, ErrNotInitialized
	}
	return handle, nil
}

// Open creates a new gorm connection without touching the shared handle.
func Open(opts Options) (*gorm.DB, error) {
	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(level)}

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "postgres":
		dsn := strings.TrimSpace(opts.DSN)
		if dsn == "" {
			return nil, errors.New("postgres driver requires a DSN")
		}
		gdb, err := gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(40)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		return gdb, nil
	case "", "sqlite":
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = "inkpost.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		gdb, err := gorm.Open(sqlite.Open(path), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return gdb, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// Migrate creates or updates the tables for every model.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&Post{},
		&PostTag{},
		&PostFile{},
	)
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
