package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Bucket       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	PublicDomain string
	Prefix       string
}

// S3Uploader stores files in any S3-compatible bucket (AWS, R2, MinIO).
type S3Uploader struct {
	client *s3.Client
	cfg    S3Config
	now    func() time.Time
}

func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: empty bucket")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion("auto")}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Uploader{client: client, cfg: cfg, now: time.Now}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, f File, contentType string) (Object, error) {
	key := ObjectName(u.cfg.Prefix, f.Name, u.now())
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          f.Body,
		ContentLength: aws.Int64(f.Size),
		ContentType:   aws.String(contentTypeFor(f.Name, contentType)),
	})
	if err != nil {
		return Object{}, fmt.Errorf("s3 upload %s: %w", f.Name, err)
	}
	return Object{ID: key, URL: u.URL(key)}, nil
}

func (u *S3Uploader) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", id, err)
	}
	return nil
}

func (u *S3Uploader) URL(id string) string {
	domain := strings.TrimRight(u.cfg.PublicDomain, "/")
	if domain == "" {
		domain = strings.TrimRight(u.cfg.Endpoint, "/")
	}
	return fmt.Sprintf("%s/%s/%s", domain, u.cfg.Bucket, id)
}
