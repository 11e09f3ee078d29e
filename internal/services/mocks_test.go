package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"med-field-force/internal/capture"
	"med-field-force/internal/models"
	"med-field-force/internal/repository"
)

// mockNotifier records every message sent through it
type mockNotifier struct {
	mu       sync.Mutex
	admin    []string
	personal map[int64][]string
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{personal: make(map[int64][]string)}
}

func (m *mockNotifier) SendNotification(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admin = append(m.admin, message)
}

func (m *mockNotifier) SendPersonalNotification(chatID int64, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.personal[chatID] = append(m.personal[chatID], message)
}

var _ BotNotifier = (*mockNotifier)(nil)

// mockGenerator returns a canned answer or error
type mockGenerator struct {
	configured bool
	reply      string
	err        error
	prompts    []string
}

func (m *mockGenerator) Configured() bool { return m.configured }

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

var _ TextGenerator = (*mockGenerator)(nil)

// failingPhotoStore always fails to store
type failingPhotoStore struct{}

func (failingPhotoStore) Put(ctx context.Context, userID string, photo []byte, contentType string) (string, error) {
	return "", errors.New("bucket unreachable")
}

func (failingPhotoStore) Delete(ctx context.Context, ref string) error {
	return nil
}

var _ repository.PhotoStore = failingPhotoStore{}

// trackingPhotoStore remembers which photos are still stored
type trackingPhotoStore struct {
	mu     sync.Mutex
	stored map[string]bool
	next   int
}

func newTrackingPhotoStore() *trackingPhotoStore {
	return &trackingPhotoStore{stored: make(map[string]bool)}
}

func (s *trackingPhotoStore) Put(ctx context.Context, userID string, photo []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	ref := fmt.Sprintf("mem://%s/%d", userID, s.next)
	s.stored[ref] = true
	return ref, nil
}

func (s *trackingPhotoStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stored, ref)
	return nil
}

var _ repository.PhotoStore = (*trackingPhotoStore)(nil)

// flakyBlobStore fails the next saves for one key
type flakyBlobStore struct {
	*repository.MemoryBlobStore
	mu       sync.Mutex
	key      string
	failures int
}

func (s *flakyBlobStore) Save(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	if key == s.key && s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return errors.New("backend down")
	}
	s.mu.Unlock()
	return s.MemoryBlobStore.Save(ctx, key, blob)
}

var _ repository.BlobStore = (*flakyBlobStore)(nil)

// testStores bundles in-memory collections seeded with the default roster
type testStores struct {
	blobs      repository.BlobStore
	attendance *repository.AttendanceLog
	sales      *repository.SalesLedger
	leaves     *repository.LeaveBook
	staff      *repository.StaffRoster
	bills      *repository.BillBook
	accounts   *repository.AccountBook
}

func newTestStores() *testStores {
	return newTestStoresOn(repository.NewMemoryBlobStore())
}

func newTestStoresOn(blobs repository.BlobStore) *testStores {
	return &testStores{
		blobs:      blobs,
		attendance: repository.NewAttendanceLog(blobs),
		sales:      repository.NewSalesLedger(blobs),
		leaves:     repository.NewLeaveBook(blobs),
		staff:      repository.NewStaffRoster(blobs),
		bills:      repository.NewBillBook(blobs),
		accounts:   repository.NewAccountBook(blobs),
	}
}

// fixedClock returns a settable clock
func fixedClock(t time.Time) (func() time.Time, func(time.Time)) {
	var mu sync.Mutex
	now := t
	return func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}, func(next time.Time) {
			mu.Lock()
			defer mu.Unlock()
			now = next
		}
}

var office = models.Location{Lat: 19.0760, Lng: 72.8777}

func validCapture(loc models.Location) capture.Capture {
	return capture.Capture{
		Photo:    &capture.Photo{Data: []byte{0xff, 0xd8, 0xff}, ContentType: "image/jpeg"},
		Location: &loc,
	}
}
