package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"makazi/errors"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

type ImageUpload struct {
	Filename string
	Body     io.Reader
}

type StoredImage struct {
	URL      string
	PublicID string
}

// ImageStore is the blob store holding listing photos.
type ImageStore interface {
	Upload(ctx context.Context, ownerID uint, img ImageUpload) (StoredImage, error)
	Delete(ctx context.Context, publicID string) error
}

var whitespace = regexp.MustCompile(`\s+`)

// ObjectName builds "<unixMillis>-<name>-<suffix>" with whitespace replaced by underscores.
// The random suffix keeps same-named files uploaded in one millisecond apart.
func ObjectName(at time.Time, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = whitespace.ReplaceAllString(strings.TrimSpace(base), "_")
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%d-%s-%s", at.UnixMilli(), base, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	now    func() time.Time
}

func NewCloudinaryStore(cld *cloudinary.Cloudinary, folder string) *CloudinaryStore {
	return &CloudinaryStore{cld: cld, folder: folder, now: time.Now}
}

// Upload stores img under <folder>/<ownerID>/<unixMillis>-<name>-<suffix>.
func (s *CloudinaryStore) Upload(ctx context.Context, ownerID uint, img ImageUpload) (StoredImage, error) {
	resp, err := s.cld.Upload.Upload(ctx, img.Body, uploader.UploadParams{
		Folder:   path.Join(s.folder, fmt.Sprint(ownerID)),
		PublicID: ObjectName(s.now(), img.Filename),
	})
	if err != nil {
		return StoredImage{}, errors.NewAppError(errors.ErrCodeUploadFailed, "Image upload failed", err)
	}
	if resp.Error.Message != "" {
		return StoredImage{}, errors.NewAppError(errors.ErrCodeUploadFailed, "Image upload failed: "+resp.Error.Message, nil)
	}
	return StoredImage{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}
