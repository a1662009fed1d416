package services

import (
	"context"
	"fmt"

	"chatlink/internal/repository"
	"chatlink/internal/storage"
	chatlink_errors "chatlink/pkg/errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxAvatarBytes = 5 << 20 // 5 MiB

var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ProfileInvalidator drops a cached profile after it changes.
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, id primitive.ObjectID) error
}

type UploadService struct {
	s3    *storage.Client
	users repository.UserRepository
	cache ProfileInvalidator
}

func NewUploadService(s3 *storage.Client, users repository.UserRepository, cache ProfileInvalidator) *UploadService {
	return &UploadService{s3: s3, users: users, cache: cache}
}

type AvatarUpload struct {
	UploadURL string            `json:"upload_url"`
	Headers   map[string]string `json:"headers"`
	FileURL   string            `json:"file_url"`
}

// CreateAvatarUpload presigns a PUT for the caller's new avatar and points
// their profile at the object's public URL.
func (s *UploadService) CreateAvatarUpload(ctx context.Context, userID primitive.ObjectID, contentType string, sizeBytes int64) (*AvatarUpload, error) {
	if s.s3 == nil {
		return nil, fmt.Errorf("uploads are not configured: %w", chatlink_errors.ErrInvalidInput)
	}
	if !allowedAvatarTypes[contentType] {
		return nil, fmt.Errorf("unsupported avatar content type: %w", chatlink_errors.ErrInvalidInput)
	}
	if sizeBytes <= 0 {
		return nil, fmt.Errorf("size is required: %w", chatlink_errors.ErrInvalidInput)
	}
	if sizeBytes > maxAvatarBytes {
		return nil, chatlink_errors.ErrTooLarge
	}

	key := fmt.Sprintf("avatars/%s/%s", userID.Hex(), uuid.New().String())
	uploadURL, headers, err := s.s3.PresignPut(ctx, key, contentType, sizeBytes)
	if err != nil {
		return nil, err
	}

	fileURL := s.s3.FileURL(key)
	if err := s.users.SetProfilePic(ctx, userID, fileURL); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}

	return &AvatarUpload{
		UploadURL: uploadURL,
		Headers:   headers,
		FileURL:   fileURL,
	}, nil
}
