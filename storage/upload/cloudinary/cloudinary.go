package cloudinary

import (
	"context"
	"fmt"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/storage/upload"
)

type assetUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

var newCloudinaryClient = func(cfg *config.CloudinaryUploadStrategy) (assetUploader, error) {
	client, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}

	if cfg.UploadPrefix != "" {
		client.Config.API.UploadPrefix = strings.TrimSuffix(cfg.UploadPrefix, "/")
	}

	return &client.Upload, nil
}

// StoreImpl uploads images to a Cloudinary account and returns the asset's
// secure delivery URL.
type StoreImpl struct {
	client assetUploader
	folder string
}

func NewCloudinaryUploader(cfg *config.CloudinaryUploadStrategy) (*StoreImpl, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cloudinary upload config is nil")
	}

	client, err := newCloudinaryClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return &StoreImpl{
		client: client,
		folder: strings.Trim(cfg.Folder, "/"),
	}, nil
}

func (s *StoreImpl) Put(ctx context.Context, p *upload.Payload) (string, error) {
	res, err := s.client.Upload(ctx, p.Body, uploader.UploadParams{
		ResourceType: "image",
		Folder:       s.folder,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}

	if res == nil {
		return "", fmt.Errorf("cloudinary returned no result")
	}

	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", res.Error.Message)
	}

	if res.SecureURL == "" {
		return "", fmt.Errorf("cloudinary response is missing secure_url")
	}

	return res.SecureURL, nil
}
