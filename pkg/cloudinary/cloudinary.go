package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client uploads resident attachments (maintenance photos, announcement
// files, marketplace images) to Cloudinary.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url, thumbnailURL string, err error)
	UploadFile(ctx context.Context, file io.Reader, folder, publicID string) (url string, err error)
}

const (
	imageWidth = 1200
	thumbWidth = 200
	imageEager = "q_auto,f_auto,w_1200,c_limit"
)

var eagerAsyncFalse = false

// BuildThumbnailURL returns a Cloudinary URL with a small-crop transform
// for list views.
func BuildThumbnailURL(cloudName, publicID string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_fill/%s",
		cloudName, thumbWidth, publicID)
}

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

// UploadImage uploads an image with eager optimizations (auto quality,
// format, bounded width).
func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, string, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", "", err
	}
	url := result.SecureURL
	thumbnailURL := ""
	if len(result.Eager) > 0 {
		thumbnailURL = result.Eager[0].SecureURL
	}
	if thumbnailURL == "" {
		thumbnailURL = BuildThumbnailURL(c.cloudName, result.PublicID)
	}
	return url, thumbnailURL, nil
}

// UploadFile uploads a non-image attachment (document PDFs etc.) as a raw
// resource.
func (c *clientImpl) UploadFile(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "raw",
	})
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}

// NewClientFromParams builds a Client from Cloudinary credentials.
// Returns nil (uploads disabled) when the cloud name is empty.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	if cloudName == "" {
		return nil, nil
	}
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{cloudName: cloudName, uploader: up}, nil
}
