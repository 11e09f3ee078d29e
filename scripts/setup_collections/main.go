package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultURL      = "http://127.0.0.1:8090"
	stateCollection = "app_state"
	blobMaxSize     = 32 << 20
)

// pbAdmin talks to the PocketBase collections API with a superuser token
type pbAdmin struct {
	baseURL string
	token   string
	http    *http.Client
}

func main() {
	fmt.Println("🚀 Field Force PocketBase Setup")
	fmt.Println("==============================")

	godotenv.Load()

	pb := &pbAdmin{
		baseURL: getEnv("POCKETBASE_URL", defaultURL),
		token:   getEnv("POCKETBASE_TOKEN", ""),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	fmt.Printf("Connecting to: %s\n", pb.baseURL)

	if err := pb.health(); err != nil {
		fmt.Printf("❌ PocketBase unreachable: %v\n", err)
		fmt.Printf("   Start it with: go run ./scripts/pbserver serve --http=%s\n", "127.0.0.1:8090")
		os.Exit(1)
	}

	if pb.token == "" {
		email, password := os.Getenv("POCKETBASE_ADMIN_EMAIL"), os.Getenv("POCKETBASE_ADMIN_PASSWORD")
		if email == "" || password == "" {
			fmt.Println("❌ Set POCKETBASE_TOKEN, or POCKETBASE_ADMIN_EMAIL and POCKETBASE_ADMIN_PASSWORD")
			os.Exit(1)
		}
		if err := pb.login(email, password); err != nil {
			fmt.Printf("❌ Superuser login failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Logged in as superuser")
	}

	if _, err := pb.send("GET", "/api/collections", nil); err != nil {
		fmt.Printf("❌ Token rejected: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n📦 Ensuring collection: %s\n", stateCollection)
	if err := pb.ensureCollection(stateCollection, stateFields(), stateIndexes()); err != nil {
		fmt.Printf("   ⚠️  %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n🎉 Setup complete!")
	fmt.Printf("Admin UI: %s/_/\n", pb.baseURL)
}

// stateFields describes app_state: one JSON blob per application collection
func stateFields() []map[string]interface{} {
	return []map[string]interface{}{
		{"name": "key", "type": "text", "required": true, "max": 64},
		{"name": "blob", "type": "json", "maxSize": blobMaxSize},
		{"name": "updated", "type": "autodate", "onCreate": true, "onUpdate": true},
	}
}

func stateIndexes() []string {
	return []string{
		fmt.Sprintf("CREATE UNIQUE INDEX `idx_%s_key` ON `%s` (`key`)", stateCollection, stateCollection),
	}
}

func (pb *pbAdmin) health() error {
	resp, err := pb.http.Get(pb.baseURL + "/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: %s", resp.Status)
	}
	fmt.Println("✅ PocketBase is running")
	return nil
}

func (pb *pbAdmin) login(email, password string) error {
	body, err := pb.send("POST", "/api/collections/_superusers/auth-with-password", map[string]string{
		"identity": email,
		"password": password,
	})
	if err != nil {
		return err
	}
	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &auth); err != nil {
		return fmt.Errorf("decode auth: %w", err)
	}
	pb.token = auth.Token
	return nil
}

// send performs a JSON request and returns the body of a 2xx response
func (pb *pbAdmin) send(method, path string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, pb.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if pb.token != "" {
		req.Header.Set("Authorization", pb.token)
	}

	resp, err := pb.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

// ensureCollection creates the collection, or adds missing fields and
// indexes when it already exists
func (pb *pbAdmin) ensureCollection(name string, fields []map[string]interface{}, indexes []string) error {
	body, err := pb.send("GET", "/api/collections/"+name, nil)
	if err != nil {
		if _, err := pb.send("POST", "/api/collections", map[string]interface{}{
			"name":    name,
			"type":    "base",
			"fields":  fields,
			"indexes": indexes,
		}); err != nil {
			return err
		}
		fmt.Printf("   Created with %d fields\n", len(fields))
		return nil
	}

	var existing struct {
		Fields  []map[string]interface{} `json:"fields"`
		Indexes []string                 `json:"indexes"`
	}
	if err := json.Unmarshal(body, &existing); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	wanted := make(map[string]map[string]interface{}, len(fields))
	for _, f := range fields {
		if n, ok := f["name"].(string); ok {
			wanted[n] = f
		}
	}

	added := 0
	have := make(map[string]bool)
	for _, f := range existing.Fields {
		n, ok := f["name"].(string)
		if !ok {
			continue
		}
		have[n] = true
		// raise a json field left at the 1MB default
		if want, ok := wanted[n]["maxSize"].(int); ok {
			if cur, _ := f["maxSize"].(float64); cur < float64(want) {
				f["maxSize"] = want
				added++
			}
		}
	}
	for _, idx := range existing.Indexes {
		have[idx] = true
	}

	for _, f := range fields {
		if n, _ := f["name"].(string); !have[n] {
			existing.Fields = append(existing.Fields, f)
			added++
		}
	}
	for _, idx := range indexes {
		if !have[idx] {
			existing.Indexes = append(existing.Indexes, idx)
			added++
		}
	}

	if added == 0 {
		fmt.Println("   Schema already up to date")
		return nil
	}
	if _, err := pb.send("PATCH", "/api/collections/"+name, existing); err != nil {
		return err
	}
	fmt.Printf("   Applied %d schema changes\n", added)
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
