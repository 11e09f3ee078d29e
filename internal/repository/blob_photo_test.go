package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"med-field-force/internal/models"
)

func TestBlobPhotoStore(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()
	store := NewBlobPhotoStore(blobs)
	store.now = func() time.Time { return time.Date(2026, 3, 9, 10, 5, 0, 0, time.UTC) }

	ref, err := store.Put(ctx, "S101", []byte("abc"), "")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	key, ok := strings.CutPrefix(ref, "blob:photo_")
	if !ok || len(key) != 36 {
		t.Fatalf("Put() = %s, want blob:photo_<uuid>", ref)
	}

	raw, err := blobs.Load(ctx, strings.TrimPrefix(ref, "blob:"))
	if err != nil {
		t.Fatalf("photo blob missing: %v", err)
	}
	var photo StoredPhoto
	if err := json.Unmarshal(raw, &photo); err != nil {
		t.Fatalf("photo blob is not JSON: %v", err)
	}
	if photo.UserID != "S101" || photo.ContentType != "image/jpeg" || string(photo.Data) != "abc" {
		t.Errorf("stored photo = %+v", photo)
	}

	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := blobs.Load(ctx, strings.TrimPrefix(ref, "blob:")); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("Load() after Delete() error = %v, want ErrBlobNotFound", err)
	}
	if err := store.Delete(ctx, "s3://bucket/a.jpg"); err == nil {
		t.Error("Delete() of a foreign reference succeeded")
	}
}

// Photos live outside the attendance blob, so it grows by a reference per event
func TestAttendanceBlobHoldsOnlyPhotoReferences(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()
	photos := NewBlobPhotoStore(blobs)
	attendance := NewAttendanceLog(blobs)

	big := make([]byte, 256<<10)
	ref, err := photos.Put(ctx, "S101", big, "image/jpeg")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := attendance.Append(ctx, &models.AttendanceEvent{ID: "A1", UserID: "S101", Type: models.EventIn, Photo: ref}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	raw, _ := blobs.Load(ctx, KeyAttendance)
	if len(raw) > 4<<10 {
		t.Errorf("attendance blob is %d bytes, want only the reference stored", len(raw))
	}
}
