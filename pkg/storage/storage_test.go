package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/contactbook/contactbook-api/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	putErrs   []error
	deleteErr error

	puts    int
	deletes []string
	body    []byte
	input   *s3.PutObjectInput
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts++
	f.input = params
	body, _ := io.ReadAll(params.Body)
	f.body = body

	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(params.Key))
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func newTestClient(api ObjectAPI, cfg Config) *Client {
	c := NewClientWithAPI(api, cfg)
	c.retryConfig = retry.Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1,
		Retryable:    retry.IsRetryable,
	}
	return c
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "explicit public base",
			cfg:  Config{BucketName: "pics", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/pictures/a.png",
		},
		{
			name: "custom endpoint",
			cfg:  Config{BucketName: "pics", Endpoint: "http://localhost:9000"},
			want: "http://localhost:9000/pics/pictures/a.png",
		},
		{
			name: "aws default region",
			cfg:  Config{BucketName: "pics"},
			want: "https://pics.s3.us-east-1.amazonaws.com/pictures/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClientWithAPI(&fakeObjectAPI{}, tt.cfg)
			assert.Equal(t, tt.want, c.PublicURL("pictures/a.png"))
		})
	}
}

func TestUploadImage(t *testing.T) {
	api := &fakeObjectAPI{}
	c := newTestClient(api, Config{BucketName: "pics", PublicBaseURL: "https://cdn.example.com"})

	url, err := c.UploadImage(context.Background(), []byte("image-bytes"), "pictures/2024/01/ana.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/pictures/2024/01/ana.png", url)
	assert.Equal(t, "pics", aws.ToString(api.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(api.input.ContentType))
	assert.Equal(t, []byte("image-bytes"), api.body)
}

func TestUploadImage_RetriesWithFreshBody(t *testing.T) {
	api := &fakeObjectAPI{putErrs: []error{errors.New("connection reset"), nil}}
	c := newTestClient(api, Config{BucketName: "pics"})

	_, err := c.UploadImage(context.Background(), []byte("image-bytes"), "k.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, 2, api.puts)
	assert.Equal(t, []byte("image-bytes"), api.body)
}

func TestUploadImage_Failure(t *testing.T) {
	down := errors.New("service down")
	api := &fakeObjectAPI{putErrs: []error{down, down, down}}
	c := newTestClient(api, Config{BucketName: "pics"})

	_, err := c.UploadImage(context.Background(), []byte("x"), "k.png", "image/png")
	assert.ErrorIs(t, err, down)
	assert.Equal(t, 3, api.puts)
}

func TestUploadImage_BreakerOpens(t *testing.T) {
	down := errors.New("service down")
	api := &fakeObjectAPI{}
	c := newTestClient(api, Config{BucketName: "pics"})
	c.retryConfig.MaxRetries = 0

	for i := 0; i < 3; i++ {
		api.putErrs = []error{down}
		_, err := c.UploadImage(context.Background(), []byte("x"), "k.png", "image/png")
		require.Error(t, err)
	}

	puts := api.puts
	_, err := c.UploadImage(context.Background(), []byte("x"), "k.png", "image/png")
	assert.True(t, IsUnavailable(err))
	assert.Equal(t, puts, api.puts)
}

func TestDeleteObject(t *testing.T) {
	api := &fakeObjectAPI{}
	c := newTestClient(api, Config{BucketName: "pics"})

	require.NoError(t, c.DeleteObject(context.Background(), ""))
	assert.Empty(t, api.deletes)

	require.NoError(t, c.DeleteObject(context.Background(), "pictures/a.png"))
	assert.Equal(t, []string{"pictures/a.png"}, api.deletes)
}

func TestDeleteObject_Failure(t *testing.T) {
	api := &fakeObjectAPI{deleteErr: errors.New("denied")}
	c := newTestClient(api, Config{BucketName: "pics"})

	err := c.DeleteObject(context.Background(), "pictures/a.png")
	assert.Error(t, err)
	assert.Len(t, api.deletes, 3)
}

func TestNewClient_RequiresBucket(t *testing.T) {
	_, err := NewClient(Config{AccessKeyID: "id", SecretAccessKey: "secret"})
	assert.Error(t, err)

	c, err := NewClient(Config{AccessKeyID: "id", SecretAccessKey: "secret", BucketName: "pics", Endpoint: "http://localhost:9000"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/pics/a.png", c.PublicURL("a.png"))
}
