package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Options struct {
	Bucket        string
	Region        string
	Endpoint      string // e.g. https://<account-id>.r2.cloudflarestorage.com
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Store targets AWS S3 or any S3-compatible service such as Cloudflare R2.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Store(ctx context.Context, o S3Options) (*S3Store, error) {
	if strings.TrimSpace(o.Bucket) == "" {
		return nil, fmt.Errorf("s3 store: S3_BUCKET is required")
	}
	region := o.Region
	if region == "" {
		region = "auto"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if o.AccessKey != "" && o.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if o.Endpoint != "" {
			opts.BaseEndpoint = aws.String(o.Endpoint)
		}
		opts.UsePathStyle = true // required for R2
	})

	base := strings.TrimRight(o.PublicBaseURL, "/")
	if base == "" {
		endpoint := strings.TrimRight(o.Endpoint, "/")
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", region)
		}
		base = endpoint + "/" + o.Bucket
	}

	return &S3Store{client: client, bucket: o.Bucket, baseURL: base}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return publicURL(s.baseURL, key), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// KeyFromURL understands the configured base URL and r2.dev style URLs
// (https://<bucket>.<account>.r2.dev/<object>).
func (s *S3Store) KeyFromURL(raw string) (string, error) {
	if key, err := keyUnderBase(s.baseURL, raw); err == nil {
		return key, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrForeignURL
	}
	if strings.HasSuffix(strings.ToLower(u.Host), ".r2.dev") {
		if key := strings.TrimPrefix(u.Path, "/"); key != "" {
			return key, nil
		}
	}
	return "", ErrForeignURL
}
