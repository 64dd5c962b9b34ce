package domain

import "io"

// MaxImageSize is the maximum accepted upload size (20MB).
const MaxImageSize = 20 * 1024 * 1024

// allowedImageTypes is the content-type allow-list for character images.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// ImageUpload is an uploaded image payload. The declared size and content
// type come from the client and are validated before any use case runs;
// the storage layer additionally enforces the size while streaming.
type ImageUpload struct {
	// Reader streams the image content.
	Reader io.Reader

	// Size is the declared content length in bytes.
	Size int64

	// ContentType is the declared MIME type.
	ContentType string

	// Filename is the original filename as uploaded.
	Filename string
}

// Validate checks the upload against the allow-list and size cap.
func (u *ImageUpload) Validate() error {
	if u == nil || u.Reader == nil {
		return ErrImageRequired
	}
	if !allowedImageTypes[u.ContentType] {
		return ErrImageTypeNotAllowed
	}
	if u.Size <= 0 {
		return ErrImageRequired
	}
	if u.Size > MaxImageSize {
		return ErrImageTooLarge
	}
	return nil
}
