package migrations

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"
	"github.com/pocketbase/pocketbase/tools/types"
)

func TestAppStateAcceptsLargeBlobs(t *testing.T) {
	app, err := tests.NewTestApp()
	if err != nil {
		t.Fatalf("NewTestApp() error = %v", err)
	}
	defer app.Cleanup()

	collection, err := app.FindCollectionByNameOrId("app_state")
	if err != nil {
		t.Fatalf("app_state missing after migrations: %v", err)
	}
	field, ok := collection.Fields.GetByName("blob").(*core.JSONField)
	if !ok || field.MaxSize != blobMaxSize {
		t.Fatalf("blob field = %#v, want json with MaxSize %d", collection.Fields.GetByName("blob"), blobMaxSize)
	}

	// several MB, well past the 1MB json default
	big := `["` + strings.Repeat("x", 4<<20) + `"]`
	record := core.NewRecord(collection)
	record.Set("key", "elder_attendance")
	record.Set("blob", types.JSONRaw(big))
	if err := app.Save(record); err != nil {
		t.Errorf("saving a 4MB blob failed: %v", err)
	}

	dup := core.NewRecord(collection)
	dup.Set("key", "elder_attendance")
	dup.Set("blob", types.JSONRaw(`[]`))
	if err := app.Save(dup); err == nil {
		t.Error("second record with the same key was accepted")
	}
}
