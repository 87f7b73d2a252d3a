package handler

import (
	"log/slog"

	"github.com/inkpost/internal/auth"
	"github.com/inkpost/internal/metrics"
	"github.com/inkpost/internal/service"
	"github.com/inkpost/internal/storage"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	posts    *service.PostService
	renderer *service.ContentRenderer
	signer   *service.UploadSigner
	verifier *auth.Verifier
	uploads  storage.Provider
	metrics  *metrics.Collectors
	logger   *slog.Logger
}

// Options carries the optional collaborators of an API. Nil fields disable the feature they back.
type Options struct {
	UploadSigner *service.UploadSigner
	Verifier     *auth.Verifier
	Uploads      storage.Provider
	Metrics      *metrics.Collectors
	Logger       *slog.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &API{
		db:       gdb,
		posts:    service.NewPostService(gdb),
		renderer: service.NewContentRenderer(),
		signer:   opts.UploadSigner,
		verifier: opts.Verifier,
		uploads:  opts.Uploads,
		metrics:  opts.Metrics,
		logger:   logger,
	}
}
