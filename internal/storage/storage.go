package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// FileStore uploads a document and returns its public URL
type FileStore interface {
	Upload(ctx context.Context, name string, file io.Reader) (string, error)
}

// CloudinaryStore keeps credential documents on Cloudinary
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore creates a store for the given account
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// Upload sends the file as an image resource and returns its https URL
func (s *CloudinaryStore) Upload(ctx context.Context, name string, file io.Reader) (string, error) {
	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "image",
		Tags:         []string{"credential", name},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("failed to upload %s: %s", name, res.Error.Message)
	}
	return res.SecureURL, nil
}
