package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PocketBaseBlobStore implements BlobStore against the app_state collection
// of a PocketBase server, one record per key
type PocketBaseBlobStore struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewPocketBaseBlobStore creates the store. token may be empty.
func NewPocketBaseBlobStore(baseURL, token string) *PocketBaseBlobStore {
	return &PocketBaseBlobStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *PocketBaseBlobStore) addAuthHeader(req *http.Request) {
	if s.authToken != "" {
		req.Header.Set("Authorization", s.authToken)
	}
}

type stateRecord struct {
	ID   string          `json:"id,omitempty"`
	Key  string          `json:"key"`
	Blob json.RawMessage `json:"blob"`
}

func (s *PocketBaseBlobStore) find(ctx context.Context, key string) (*stateRecord, error) {
	filter := url.QueryEscape(fmt.Sprintf("key='%s'", key))
	apiURL := fmt.Sprintf("%s/api/collections/app_state/records?filter=%s&limit=1", s.baseURL, filter)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	s.addAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ HTTP error loading %s: %v", key, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to look up %s: %s - %s", key, resp.Status, string(body))
	}

	var result struct {
		Items []stateRecord `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}
	return &result.Items[0], nil
}

func (s *PocketBaseBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	rec, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil || len(rec.Blob) == 0 || string(rec.Blob) == "null" {
		return nil, ErrBlobNotFound
	}
	return rec.Blob, nil
}

func (s *PocketBaseBlobStore) Save(ctx context.Context, key string, blob []byte) error {
	rec, err := s.find(ctx, key)
	if err != nil {
		return err
	}

	// The blob field is a JSON field, so a non-JSON payload is stored as a string.
	payload := json.RawMessage(blob)
	if !json.Valid(blob) {
		quoted, _ := json.Marshal(string(blob))
		payload = quoted
	}
	jsonData, err := json.Marshal(stateRecord{Key: key, Blob: payload})
	if err != nil {
		return err
	}

	method := http.MethodPost
	apiURL := fmt.Sprintf("%s/api/collections/app_state/records", s.baseURL)
	if rec != nil {
		method = http.MethodPatch
		apiURL = fmt.Sprintf("%s/%s", apiURL, rec.ID)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.addAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to save %s: %s - %s", key, resp.Status, string(body))
	}

	log.Printf("💾 Saved %s (%d bytes)", key, len(blob))
	return nil
}

func (s *PocketBaseBlobStore) Delete(ctx context.Context, key string) error {
	rec, err := s.find(ctx, key)
	if err != nil || rec == nil {
		return err
	}

	apiURL := fmt.Sprintf("%s/api/collections/app_state/records/%s", s.baseURL, rec.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, apiURL, nil)
	if err != nil {
		return err
	}
	s.addAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to delete %s: %s - %s", key, resp.Status, string(body))
	}
	log.Printf("🗑️ Deleted %s", key)
	return nil
}
