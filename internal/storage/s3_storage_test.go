package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/ikkim/bookshelf-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(baseURL string) *S3Storage {
	return NewS3Storage(config.S3Config{
		Region:          "eu-central-1",
		Bucket:          "bookshelf-covers",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		BaseURL:         baseURL,
	})
}

func TestPresignCoverUpload(t *testing.T) {
	s := newTestStorage("")

	resp, err := s.PresignCoverUpload(context.Background(), 42, "Cover.JPG", "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Key, "covers/42/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".jpg"))
	assert.Contains(t, resp.UploadURL, "bookshelf-covers")
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature")
	assert.Equal(t, "https://bookshelf-covers.s3.eu-central-1.amazonaws.com/"+resp.Key, resp.FileURL)
	assert.False(t, resp.ExpiresAt.IsZero())
}

func TestPresignCoverUpload_BaseURL(t *testing.T) {
	s := newTestStorage("https://cdn.example.com/")

	resp, err := s.PresignCoverUpload(context.Background(), 1, "a.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+resp.Key, resp.FileURL)
}

func TestPresignCoverUpload_RejectsContentType(t *testing.T) {
	s := newTestStorage("")

	_, err := s.PresignCoverUpload(context.Background(), 1, "a.pdf", "application/pdf")
	assert.ErrorIs(t, err, ErrContentTypeNotAllowed)
}
