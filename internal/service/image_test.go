package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-organizer/backend/internal/service"
)

// 1x1 transparent PNG.
var pngPixel, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func fixedID() string { return "img-1" }

func TestImageServiceDataURL(t *testing.T) {
	svc := service.NewImageService(service.DataURLBackend{}, 1<<20, service.WithIDGenerator(fixedID))

	img, err := svc.Store(context.Background(), "dir/pixel.png", pngPixel)
	require.NoError(t, err)

	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngPixel), img.Reference)
	assert.Equal(t, "pixel.png", img.Filename)
	assert.Equal(t, len(pngPixel), img.Size)
	assert.Equal(t, "image/png", img.ContentType)
}

func TestImageServiceRejects(t *testing.T) {
	svc := service.NewImageService(service.DataURLBackend{}, 16)

	tests := []struct {
		name    string
		data    []byte
		message string
	}{
		{"empty", nil, "No file uploaded"},
		{"too large", pngPixel, "File too large, maximum size is 16 bytes"},
		{"not an image", []byte("plain text"), "Only image files are allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Store(context.Background(), "f", tt.data)
			var verr *service.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}

func TestImageServiceS3(t *testing.T) {
	client := new(mockS3)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return aws.ToString(in.Bucket) == "recipe-images" &&
			aws.ToString(in.Key) == "recipes/img-1.png" &&
			aws.ToString(in.ContentType) == "image/png" &&
			len(body) == len(pngPixel)
	})).Return(&s3.PutObjectOutput{}, nil)

	backend := service.NewS3Backend(client, "recipe-images", "eu-west-1")
	svc := service.NewImageService(backend, 1<<20, service.WithIDGenerator(fixedID))

	img, err := svc.Store(context.Background(), "pixel.png", pngPixel)
	require.NoError(t, err)
	assert.Equal(t, "https://recipe-images.s3.eu-west-1.amazonaws.com/recipes/img-1.png", img.Reference)
	client.AssertExpectations(t)
}

func TestImageServiceS3Failure(t *testing.T) {
	client := new(mockS3)
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	svc := service.NewImageService(service.NewS3Backend(client, "b", ""), 1<<20)
	_, err := svc.Store(context.Background(), "pixel.png", pngPixel)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "access denied"))
	assert.False(t, errors.Is(err, service.ErrValidation))
}
