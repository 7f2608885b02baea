// Package storage keeps contact pictures in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/contactbook/contactbook-api/pkg/circuitbreaker"
	"github.com/contactbook/contactbook-api/pkg/logger"
	"github.com/contactbook/contactbook-api/pkg/metrics"
	"github.com/contactbook/contactbook-api/pkg/retry"
	"go.uber.org/zap"
)

const (
	defaultRegion = "us-east-1"
	callTimeout   = 30 * time.Second
)

// ObjectAPI is the subset of the S3 client used here
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config describes the bucket
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string // empty for AWS itself
	Region          string
	PublicBaseURL   string // prefix of public object URLs; derived from Endpoint when empty
}

// Client uploads and removes picture objects. Calls go through a circuit breaker
// and are retried with backoff.
type Client struct {
	api           ObjectAPI
	bucketName    string
	publicBaseURL string
	breaker       *circuitbreaker.Breaker
	retryConfig   retry.Config
}

// NewClient creates a storage client backed by the AWS SDK
func NewClient(cfg Config) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("storage bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	opts := s3.Options{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token not needed
		),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", cfg.Region),
	)

	return NewClientWithAPI(s3.New(opts), cfg), nil
}

// NewClientWithAPI wires a client around any ObjectAPI implementation
func NewClientWithAPI(api ObjectAPI, cfg Config) *Client {
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	return &Client{
		api:           api,
		bucketName:    cfg.BucketName,
		publicBaseURL: publicBaseURL(cfg),
		breaker:       circuitbreaker.New("object_storage"),
		retryConfig:   retry.StorageConfig(),
	}
}

func publicBaseURL(cfg Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.BucketName)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.BucketName, cfg.Region)
}

// PublicURL returns the URL an uploaded object is served from
func (c *Client) PublicURL(key string) string {
	return c.publicBaseURL + "/" + key
}

// UploadImage stores an already decoded image under key and returns its public URL
func (c *Client) UploadImage(ctx context.Context, data []byte, key, contentType string) (string, error) {
	start := time.Now()
	operation := "uploadImage"

	_, err := circuitbreaker.Call(c.breaker, func() (*s3.PutObjectOutput, error) {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		return retry.DoWithResult(callCtx, c.retryConfig, operation, func() (*s3.PutObjectOutput, error) {
			return c.api.PutObject(callCtx, &s3.PutObjectInput{
				Bucket:      aws.String(c.bucketName),
				Key:         aws.String(key),
				Body:        bytes.NewReader(data),
				ContentType: aws.String(contentType),
			})
		})
	})

	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)

	return c.PublicURL(key), nil
}

// DeleteObject removes the object at key. An empty key is a no-op.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	start := time.Now()
	operation := "deleteObject"

	_, err := circuitbreaker.Call(c.breaker, func() (struct{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		return struct{}{}, retry.Do(callCtx, c.retryConfig, operation, func() error {
			_, delErr := c.api.DeleteObject(callCtx, &s3.DeleteObjectInput{
				Bucket: aws.String(c.bucketName),
				Key:    aws.String(key),
			})
			return delErr
		})
	})

	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to delete object: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("object_storage", operation, "success", duration, zap.String("key", key))
	return nil
}

// IsUnavailable reports whether err means storage is refusing calls for now
func IsUnavailable(err error) bool {
	return circuitbreaker.IsRejected(err) || errors.Is(err, context.DeadlineExceeded)
}

func recordMetrics(operation, status string, duration float64) {
	metrics.StorageRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, status).Inc()
}
