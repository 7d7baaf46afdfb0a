// Package storage holds resume files in a Cloudflare R2 bucket through the
// S3 API.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/blocksphere4/TalentHireAI/internal/extract"
	"github.com/blocksphere4/TalentHireAI/internal/retry"
)

// bucketAttempts is the retry budget for R2 calls.
const bucketAttempts = 3

// MaxResumeBytes is the upload ceiling enforced before any network call.
const MaxResumeBytes = 10 << 20 // 10 MiB

// allowedMimes are the document formats accepted for resume uploads.
var allowedMimes = map[string]bool{
	extract.MimePDF: true,
}

type R2Config struct {
	AccountID string
	Bucket    string
	BaseURL   string
}

// Client wraps the S3 client pointed at an R2 bucket.
type Client struct {
	s3     *s3.Client
	bucket string
	base   string
}

func NewClient(awsConfig aws.Config, cfg R2Config) *Client {
	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})
	return &Client{s3: client, bucket: cfg.Bucket, base: cfg.BaseURL}
}

// ValidateResume rejects files the store must never see: wrong content
// type or above the byte ceiling.
func ValidateResume(contentType string, size int64) error {
	if !allowedMimes[contentType] {
		return fmt.Errorf("invalid file type %q: only PDF files are allowed", contentType)
	}
	if size > MaxResumeBytes {
		return fmt.Errorf("file size %d exceeds the %d byte limit", size, MaxResumeBytes)
	}
	if size <= 0 {
		return fmt.Errorf("empty file")
	}
	return nil
}

// Upload stores the resume bytes under a fresh object key and returns the
// key and the public URL.
func (c *Client) Upload(ctx context.Context, data []byte, contentType string) (key, url string, err error) {
	if err := ValidateResume(contentType, int64(len(data))); err != nil {
		return "", "", err
	}

	key = fmt.Sprintf("resumes/%s.pdf", uuid.New())
	_, err = retry.Do(bucketAttempts, func() (*s3.PutObjectOutput, error) {
		return c.s3.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(c.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to put object: %w", err)
	}

	return key, fmt.Sprintf("%s/%s", c.base, key), nil
}

// Download fetches a stored resume by object key.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := retry.Do(bucketAttempts, func() (*s3.GetObjectOutput, error) {
		return c.s3.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}
