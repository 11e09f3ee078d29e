package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// generateRequest is the part of the generateContent body the tests inspect
type generateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ThinkingConfig struct {
			ThinkingBudget int `json:"thinkingBudget"`
		} `json:"thinkingConfig"`
	} `json:"generationConfig"`
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		want       string
		wantErrSub string
	}{
		{
			name:   "Parts are concatenated",
			status: http.StatusOK,
			body:   `{"candidates":[{"content":{"role":"model","parts":[{"text":"1. Visit "},{"text":"more clinics"}]}}]}`,
			want:   "1. Visit more clinics",
		},
		{
			name:       "No candidates",
			status:     http.StatusOK,
			body:       `{"candidates":[]}`,
			wantErrSub: "no candidates",
		},
		{
			name:       "Quota exceeded",
			status:     http.StatusTooManyRequests,
			body:       `{"error":{"message":"quota"}}`,
			wantErrSub: "429",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotKey, gotPrompt string
			gotBudget := -1
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotKey = r.Header.Get("x-goog-api-key")
				var req generateRequest
				json.NewDecoder(r.Body).Decode(&req)
				if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
					gotPrompt = req.Contents[0].Parts[0].Text
				}
				gotBudget = req.GenerationConfig.ThinkingConfig.ThinkingBudget
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewGeminiClient("test-key", "").WithBaseURL(server.URL + "/")
			got, err := client.Generate(context.Background(), "How are sales?")

			if gotPath != "/v1beta/models/"+DefaultModel+":generateContent" {
				t.Errorf("path = %q", gotPath)
			}
			if gotKey != "test-key" || gotPrompt != "How are sales?" || gotBudget != 0 {
				t.Errorf("request key=%q prompt=%q budget=%d", gotKey, gotPrompt, gotBudget)
			}
			if tt.wantErrSub != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrSub) {
					t.Errorf("Generate() error = %v, want containing %q", err, tt.wantErrSub)
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateWithoutKey(t *testing.T) {
	client := NewGeminiClient("", "")
	if client.Configured() {
		t.Error("client without key reports configured")
	}
	if _, err := client.Generate(context.Background(), "hi"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Generate() error = %v, want ErrNoAPIKey", err)
	}

	var nilClient *GeminiClient
	if nilClient.Configured() {
		t.Error("nil client reports configured")
	}
}
