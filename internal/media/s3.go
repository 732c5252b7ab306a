// Package media stores uploaded binary assets on an S3-compatible host and
// hands back (id, url) pointer pairs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"portfolioserver/internal/domain"
)

// Folders group assets by what owns them.
const (
	FolderAvatar        = "AVATAR"
	FolderResume        = "RESUME"
	FolderProjectBanner = "PROJECT_BANNER"
	FolderSkillIcon     = "SKILL_ICON"
	FolderSoftwareIcon  = "SVG_ICON"
)

var ErrUnavailable = errors.New("media host not configured")

type Upload struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

type S3Store struct {
	client     s3API
	bucket     string
	publicBase string
	newKey     func(folder, filename string) string
}

func NewS3Store(ctx context.Context, opts Options) (*S3Store, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return newS3Store(client, opts), nil
}

func newS3Store(client s3API, opts Options) *S3Store {
	return &S3Store{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: publicBase(opts),
		newKey:     objectKey,
	}
}

func publicBase(opts Options) string {
	switch {
	case opts.PublicBaseURL != "":
		return strings.TrimRight(opts.PublicBaseURL, "/")
	case opts.Endpoint != "":
		return strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
}

func objectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return folder + "/" + uuid.NewString() + ext
}

func (s *S3Store) Upload(ctx context.Context, up Upload) (domain.Asset, error) {
	key := s.newKey(up.Folder, up.Filename)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   up.Body,
	}
	if up.ContentType != "" {
		in.ContentType = aws.String(up.ContentType)
	}
	if up.Size > 0 {
		in.ContentLength = aws.Int64(up.Size)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return domain.Asset{}, fmt.Errorf("put object %s: %w", key, err)
	}
	return domain.Asset{ID: key, URL: s.publicBase + "/" + key}, nil
}

// Delete removes the object behind id. An empty id is a no-op.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", id, err)
	}
	return nil
}

// Disabled is used when no bucket is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, Upload) (domain.Asset, error) {
	return domain.Asset{}, ErrUnavailable
}

func (Disabled) Delete(context.Context, string) error { return ErrUnavailable }
