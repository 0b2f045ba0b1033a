package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"alessacloud/internal/config"
)

// Storage errors
var (
	ErrStorageDisabled   = errors.New("object storage is not configured")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// UploadTicket is a presigned upload slot for a menu image. The client
// PUTs the file directly to object storage; the API never proxies bytes.
type UploadTicket struct {
	Key         string    `json:"key"`
	UploadURL   string    `json:"uploadUrl"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// S3Service issues presigned upload URLs for menu images. Keys are
// namespaced by tenant slug so one tenant's uploads can never shadow
// another's.
type S3Service struct {
	client *s3.S3
	cfg    config.StorageConfig
}

// NewS3Service creates the storage service. Returns a disabled service
// when storage is not configured.
func NewS3Service(cfg config.StorageConfig) (*S3Service, error) {
	svc := &S3Service{cfg: cfg}

	if !cfg.Enabled || cfg.Bucket == "" {
		return svc, nil
	}

	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	svc.client = s3.New(sess)
	return svc, nil
}

// Enabled reports whether object storage is configured
func (s *S3Service) Enabled() bool {
	return s.client != nil
}

// PresignMenuImageUpload issues a presigned PUT for a tenant's menu image
func (s *S3Service) PresignMenuImageUpload(tenantSlug, filename string) (*UploadTicket, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}

	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	key := fmt.Sprintf("menus/%s/%s%s", tenantSlug, uuid.New(), ext)

	req, _ := s.client.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})

	url, err := req.Presign(s.cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &UploadTicket{
		Key:         key,
		UploadURL:   url,
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(s.cfg.PresignExpiry),
	}, nil
}

// ObjectURL returns the public URL for a stored object key
func (s *S3Service) ObjectURL(key string) string {
	if key == "" || s.cfg.Bucket == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
