package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
	domainerrors "github.com/pageza/foodgram/backend/internal/errors"
)

// MaxImageSize bounds a decoded recipe image.
const MaxImageSize = 10 << 20

// DecodedImage is an uploaded image after base64 decoding and type sniffing.
type DecodedImage struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeImage accepts a base64 data URL ("data:image/png;base64,...") or bare base64.
// The content type is sniffed from the bytes, not taken from the URL.
func DecodeImage(value string) (*DecodedImage, error) {
	payload := strings.TrimSpace(value)
	if payload == "" {
		return nil, domainerrors.FieldError("image", "This field is required.")
	}
	if strings.HasPrefix(payload, "data:") {
		_, encoded, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, domainerrors.FieldError("image", "Malformed data URL.")
		}
		payload = encoded
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domainerrors.FieldError("image", "Upload a valid image. The data is not valid base64.")
	}
	if len(data) == 0 {
		return nil, domainerrors.FieldError("image", "The submitted file is empty.")
	}
	if len(data) > MaxImageSize {
		return nil, domainerrors.FieldError("image", fmt.Sprintf("Image must not exceed %d bytes.", MaxImageSize))
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, domainerrors.FieldError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	return &DecodedImage{Data: data, ContentType: mtype.String(), Extension: mtype.Extension()}, nil
}

// NewImageKey returns a fresh storage key for a recipe image.
func NewImageKey(img *DecodedImage) string {
	return "recipes/images/" + uuid.NewString() + img.Extension
}

// S3ImageStore stores images in an S3 bucket.
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Save(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      s.s3Config.Bucket(),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.s3Config.Bucket(),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *S3ImageStore) URL(key string) string {
	return s.s3Config.ObjectURL(key)
}

// LocalImageStore writes images below a directory served at baseURL.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalImageStore{root: root, baseURL: baseURL}
}

func (s *LocalImageStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid image key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *LocalImageStore) Save(_ context.Context, key string, data []byte, _ string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

func (s *LocalImageStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *LocalImageStore) URL(key string) string {
	return s.baseURL + strings.TrimPrefix(key, "/")
}

// Root is the directory images are written to.
func (s *LocalImageStore) Root() string {
	return s.root
}
