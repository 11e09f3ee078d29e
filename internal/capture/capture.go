// Package capture resolves the photo and location that back an attendance
// event. Each source is a single-shot request that either answers, fails
// with a typed error, or is abandoned when the timeout expires.
package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"med-field-force/internal/models"
)

var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrTimeout           = errors.New("capture timed out")
	ErrDeviceUnavailable = errors.New("device unavailable")
)

// DefaultTimeout bounds a capture when the caller does not configure one
const DefaultTimeout = 15 * time.Second

// SourceError names the source that failed
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Photo is a captured still frame
type Photo struct {
	Data        []byte
	ContentType string
}

// PhotoSource produces one photo. A nil photo with a nil error means
// nothing was captured.
type PhotoSource interface {
	CapturePhoto(ctx context.Context) (*Photo, error)
}

// LocationSource produces one position fix
type LocationSource interface {
	CurrentLocation(ctx context.Context) (*models.Location, error)
}

// Capture is the resolved input to an attendance event. Either field may be
// nil when the source returned nothing.
type Capture struct {
	Photo    *Photo
	Location *models.Location
}

// Resolve asks both sources at once and waits at most timeout for them.
// The first failure cancels the other source. A nil source resolves to nothing.
func Resolve(ctx context.Context, timeout time.Duration, photos PhotoSource, locations LocationSource) (Capture, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		out       Capture
		photoDone atomic.Bool
	)
	g, gctx := errgroup.WithContext(ctx)
	if photos != nil {
		g.Go(func() error {
			defer photoDone.Store(true)
			p, err := photos.CapturePhoto(gctx)
			if err != nil {
				return &SourceError{Source: "camera", Err: classify(err)}
			}
			out.Photo = p
			return nil
		})
	} else {
		photoDone.Store(true)
	}
	if locations != nil {
		g.Go(func() error {
			l, err := locations.CurrentLocation(gctx)
			if err != nil {
				return &SourceError{Source: "geolocation", Err: classify(err)}
			}
			out.Location = l
			return nil
		})
	}

	// a source may ignore cancellation, so Wait cannot be the only exit
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return Capture{}, err
		}
		return out, nil
	case <-ctx.Done():
		select {
		case err := <-done:
			if err != nil {
				return Capture{}, err
			}
			return out, nil
		default:
		}
		source := "geolocation"
		if !photoDone.Load() {
			source = "camera"
		}
		return Capture{}, &SourceError{Source: source, Err: ErrTimeout}
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrTimeout), errors.Is(err, ErrDeviceUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
}

// ClientError maps an error code reported by the capturing client to the
// typed capture errors. Unknown codes count as an unavailable device.
func ClientError(code string) error {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "":
		return nil
	case "permission_denied", "denied":
		return ErrPermissionDenied
	case "timeout":
		return ErrTimeout
	default:
		return ErrDeviceUnavailable
	}
}

// DataURLPhoto is a photo submitted by the client as a data URL
type DataURLPhoto struct {
	DataURL string
	// Err is a failure the client reported instead of a photo
	Err error
}

func (p DataURLPhoto) CapturePhoto(ctx context.Context) (*Photo, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	if p.DataURL == "" {
		return nil, nil
	}
	return DecodeDataURL(p.DataURL)
}

// DecodeDataURL parses "data:<type>;base64,<payload>". A bare base64
// payload is accepted as JPEG.
func DecodeDataURL(s string) (*Photo, error) {
	contentType := "image/jpeg"
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, data, ok := strings.Cut(s[len("data:"):], ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("malformed photo data URL")
		}
		if mediaType := strings.TrimSuffix(header, ";base64"); mediaType != "" {
			contentType = mediaType
		}
		payload = data
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed photo payload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &Photo{Data: data, ContentType: contentType}, nil
}

// FixedLocation is a position submitted by the client
type FixedLocation struct {
	Location *models.Location
	Err      error
}

func (l FixedLocation) CurrentLocation(ctx context.Context) (*models.Location, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Location, nil
}
