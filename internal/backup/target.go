package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Target stores and retrieves backup payloads. Put returns the location the
// payload landed at (a file path or an object key), which Get accepts back.
type Target interface {
	Put(ctx context.Context, name string, payload string) (string, error)
	Get(ctx context.Context, location string) (string, error)
}

// DefaultName builds a timestamped backup name.
func DefaultName(now time.Time) string {
	return fmt.Sprintf("birthkeeper-%s.bak", now.UTC().Format("20060102-150405"))
}

// FileTarget keeps backups as files in a directory.
type FileTarget struct {
	Dir string
}

func NewFileTarget(dir string) *FileTarget {
	return &FileTarget{Dir: dir}
}

func (t *FileTarget) Put(ctx context.Context, name string, payload string) (string, error) {
	if err := os.MkdirAll(t.Dir, 0o700); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(t.Dir, name)
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		return "", fmt.Errorf("write backup %s: %w", path, err)
	}
	return path, nil
}

func (t *FileTarget) Get(ctx context.Context, location string) (string, error) {
	path := location
	if !filepath.IsAbs(path) {
		path = filepath.Join(t.Dir, location)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read backup %s: %w", path, err)
	}
	return string(data), nil
}

// S3Config holds the settings for an S3-compatible backup target
// (AWS S3 or MinIO via BaseEndpoint).
type S3Config struct {
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// S3Target keeps backups as objects in an S3-compatible bucket.
type S3Target struct {
	client *s3.Client
	bucket string
}

func NewS3Target(ctx context.Context, cfg S3Config) (*S3Target, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
	})

	return &S3Target{client: client, bucket: cfg.Bucket}, nil
}

// objectKey namespaces backups by date so a bucket shared with other tools
// stays tidy.
func objectKey(name string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("backups/%d/%02d/%s-%s", d.Year(), d.Month(), uuid.New(), name)
}

func (t *S3Target) Put(ctx context.Context, name string, payload string) (string, error) {
	key := objectKey(name)
	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &t.bucket,
		Key:    &key,
		Body:   strings.NewReader(payload),
	})
	if err != nil {
		return "", fmt.Errorf("put backup object %s: %w", key, err)
	}
	return key, nil
}

func (t *S3Target) Get(ctx context.Context, location string) (string, error) {
	out, err := t.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &t.bucket,
		Key:    &location,
	})
	if err != nil {
		return "", fmt.Errorf("get backup object %s: %w", location, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read backup object %s: %w", location, err)
	}
	return string(data), nil
}
