package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config describes an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicBaseURL overrides the URL prefix returned for stored objects.
	PublicBaseURL string
}

// S3Provider stores uploads in an S3-compatible bucket.
type S3Provider struct {
	cfg    S3Config
	client *minio.Client
}

// NewS3Provider creates a client for the configured endpoint. It does not contact the server.
func NewS3Provider(cfg S3Config) (*S3Provider, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	cfg.Endpoint = endpoint
	return &S3Provider{cfg: cfg, client: client}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (p *S3Provider) EnsureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.cfg.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return p.client.MakeBucket(ctx, p.cfg.Bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// Save uploads body as key.
func (p *S3Provider) Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	_, err = p.client.PutObject(ctx, p.cfg.Bucket, cleaned, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	return p.ObjectURL(cleaned), nil
}

// ObjectURL is the public URL of key.
func (p *S3Provider) ObjectURL(key string) string {
	if base := strings.TrimSpace(p.cfg.PublicBaseURL); base != "" {
		return joinURL(base, key)
	}
	scheme := "http"
	if p.cfg.UseSSL {
		scheme = "https"
	}
	return joinURL(fmt.Sprintf("%s://%s/%s", scheme, p.cfg.Endpoint, p.cfg.Bucket), key)
}
