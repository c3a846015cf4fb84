package docstore

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certiva/pkg/apperrors"
)

func TestUploadAndFetch(t *testing.T) {
	store := NewInMemoryStore()
	owner := uuid.New()
	content := []byte("%PDF-1.7 fake certificate")

	key, err := store.Upload(context.Background(), owner, Document{
		Content:     bytes.NewReader(content),
		Size:        int64(len(content)),
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "documents/"+owner.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	stored, ok := store.Object(key)
	require.True(t, ok)
	assert.Equal(t, content, stored)

	url, err := store.PresignedURL(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "memory://"+key, url)
}

func TestUploadValidation(t *testing.T) {
	store := NewInMemoryStore()
	owner := uuid.New()

	tests := []struct {
		name string
		doc  Document
	}{
		{
			name: "empty file",
			doc:  Document{Content: bytes.NewReader(nil), Size: 0, ContentType: "application/pdf"},
		},
		{
			name: "oversized file",
			doc:  Document{Content: bytes.NewReader(nil), Size: MaxDocumentSize + 1, ContentType: "application/pdf"},
		},
		{
			name: "disallowed content type",
			doc:  Document{Content: strings.NewReader("GIF89a"), Size: 6, ContentType: "image/gif"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Upload(context.Background(), owner, tt.doc)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
		})
	}
}

func TestPresignedURLUnknownKey(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.PresignedURL(context.Background(), "documents/nope.pdf")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
