package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/pageza/recipe-organizer/backend/config"
)

// UploadedImage describes a stored image.
type UploadedImage struct {
	Reference   string `json:"imageDataUrl"`
	Filename    string `json:"filename"`
	Size        int    `json:"size"`
	ContentType string `json:"contentType"`
}

// ImageBackend stores image bytes and returns a displayable reference.
type ImageBackend interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// DataURLBackend keeps the image inline as a base64 data URL.
type DataURLBackend struct{}

func (DataURLBackend) Put(_ context.Context, _ string, contentType string, data []byte) (string, error) {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// S3PutObjectAPI is the part of the S3 client the backend needs.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Backend uploads images to a bucket and returns their public URL.
type S3Backend struct {
	client S3PutObjectAPI
	bucket string
	region string
	prefix string
}

func NewS3Backend(client S3PutObjectAPI, bucket, region string) *S3Backend {
	return &S3Backend{client: client, bucket: bucket, region: region, prefix: "recipes/"}
}

// NewS3BackendFromConfig builds a backend from the loaded S3 client.
func NewS3BackendFromConfig(cfg *config.S3Config, region string) *S3Backend {
	return NewS3Backend(cfg.Client, cfg.BucketName, region)
}

func (b *S3Backend) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	objectKey := b.prefix + key
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	region := b.region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.bucket, region, objectKey), nil
}

// ImageService validates uploads and hands them to a backend.
type ImageService struct {
	backend  ImageBackend
	maxBytes int64
	newID    func() string
}

func NewImageService(backend ImageBackend, maxBytes int64, opts ...Option) *ImageService {
	o := applyOptions(opts)
	return &ImageService{backend: backend, maxBytes: maxBytes, newID: o.newID}
}

// Store checks that data is a non-empty image within the size limit, then
// stores it under a fresh key that keeps the detected extension.
func (s *ImageService) Store(ctx context.Context, filename string, data []byte) (*UploadedImage, error) {
	if len(data) == 0 {
		return nil, invalid("No file uploaded")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, invalid(fmt.Sprintf("File too large, maximum size is %d bytes", s.maxBytes))
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, invalid("Only image files are allowed")
	}
	contentType, _, _ := strings.Cut(mtype.String(), ";")

	key := s.newID() + mtype.Extension()
	ref, err := s.backend.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		name = key
	}
	return &UploadedImage{
		Reference:   ref,
		Filename:    name,
		Size:        len(data),
		ContentType: contentType,
	}, nil
}
