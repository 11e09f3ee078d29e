package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const blobPhotoPrefix = "blob:"

// StoredPhoto is a capture photo saved in its own blob
type StoredPhoto struct {
	UserID      string    `json:"user_id"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data"`
	TakenAt     time.Time `json:"taken_at"`
}

// BlobPhotoStore keeps each photo under its own key in the blob backend,
// so collection blobs carry only a reference.
type BlobPhotoStore struct {
	blobs BlobStore
	now   func() time.Time
}

func NewBlobPhotoStore(blobs BlobStore) *BlobPhotoStore {
	return &BlobPhotoStore{blobs: blobs, now: time.Now}
}

func (s *BlobPhotoStore) Put(ctx context.Context, userID string, photo []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	blob, err := json.Marshal(StoredPhoto{UserID: userID, ContentType: contentType, Data: photo, TakenAt: s.now()})
	if err != nil {
		return "", err
	}

	key := "photo_" + uuid.NewString()
	if err := s.blobs.Save(ctx, key, blob); err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}
	return blobPhotoPrefix + key, nil
}

func (s *BlobPhotoStore) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, blobPhotoPrefix)
	if !ok {
		return fmt.Errorf("not a stored photo reference: %s", ref)
	}
	return s.blobs.Delete(ctx, key)
}

var _ PhotoStore = (*BlobPhotoStore)(nil)
