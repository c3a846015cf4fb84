// Package docstore stores uploaded certificate documents in an
// S3-compatible object store.
package docstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"certiva/pkg/apperrors"
)

// MaxDocumentSize bounds a single upload.
const MaxDocumentSize = 10 << 20 // 10 MiB

var allowedContentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// Uploader stores documents and returns an object key usable as a file
// reference by the extraction oracle and the hash store.
type Uploader interface {
	Upload(ctx context.Context, ownerID uuid.UUID, doc Document) (string, error)
	// PresignedURL returns a short-lived GET URL for the object.
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

// Document is one upload: content plus the declared size and type.
type Document struct {
	Content     io.Reader
	Size        int64
	ContentType string
}

func (d Document) validate() (string, error) {
	if d.Size <= 0 {
		return "", apperrors.Validation(apperrors.FieldError{Field: "file", Message: "file is empty"})
	}
	if d.Size > MaxDocumentSize {
		return "", apperrors.Validation(apperrors.FieldError{Field: "file", Message: "file exceeds the 10 MiB limit"})
	}
	ct := strings.ToLower(strings.TrimSpace(d.ContentType))
	ext, ok := allowedContentTypes[ct]
	if !ok {
		return "", apperrors.Validation(apperrors.FieldError{Field: "file", Message: "only pdf, jpeg and png documents are accepted"})
	}
	return ext, nil
}

func objectKey(ownerID uuid.UUID, ext string) string {
	return fmt.Sprintf("documents/%s/%s%s", ownerID, uuid.New(), ext)
}
