package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// FileStorage defines the contract for the blob store provider (Cloudinary
// implementation). Only the opaque public ID is ever persisted by callers;
// fetchable URLs are resolved lazily per read so stored records do not rot
// if the provider's URL scheme changes.
type FileStorage interface {
	// Upload stores the file and returns its opaque public ID.
	// folder is a logical folder in storage (e.g. "submissions").
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// ResolveURL turns a public ID into a fetchable URL.
	ResolveURL(publicID string) (string, error)
	// Delete removes the object with the given public ID.
	Delete(ctx context.Context, publicID string) error
}

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage creates a Cloudinary-backed implementation of FileStorage.
// It expects CLOUDINARY_URL or individual CLOUDINARY_CLOUD_NAME / CLOUDINARY_API_KEY /
// CLOUDINARY_API_SECRET to be configured in environment variables.
func NewCloudinaryStorage() (FileStorage, error) {
	// cloudinary.New() automatically reads CLOUDINARY_URL from environment if present.
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	// Ensure HTTPS URLs by default.
	cld.Config.URL.Secure = true

	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld}, nil
}

func (s *cloudinaryStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileName)

	// Submission attachments are arbitrary documents, not just images,
	// so let Cloudinary detect the resource type.
	params := uploader.UploadParams{
		Folder:         folder,
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		PublicID:       publicID,
		Overwrite:      api.Bool(false),
		ResourceType:   "auto",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}

	if resp.PublicID == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but public ID is empty")
	}

	return resp.PublicID, nil
}

func (s *cloudinaryStorage) ResolveURL(publicID string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}
	if publicID == "" {
		return "", fmt.Errorf("empty public ID")
	}

	img, err := s.cld.Image(publicID)
	if err != nil {
		return "", fmt.Errorf("failed to build asset for %s: %w", publicID, err)
	}

	url, err := img.String()
	if err != nil {
		return "", fmt.Errorf("failed to resolve URL for %s: %w", publicID, err)
	}

	return url, nil
}

func (s *cloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}
	if publicID == "" {
		return fmt.Errorf("empty public ID")
	}

	// Invalidate: true helps to clear CDN cache
	params := uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	}

	resp, err := s.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}
