package migrations

import (
	"github.com/pocketbase/pocketbase/core"
)

// blobMaxSize lifts the 1MB JSON field default up to the records API body limit
const blobMaxSize = 32 << 20

// app_state holds one JSON blob per application collection
func init() {
	core.AppMigrations.Register(func(app core.App) error {
		collection := core.NewBaseCollection("app_state")

		collection.Fields.Add(&core.TextField{
			Id:       "state_key",
			Name:     "key",
			Required: true,
			Max:      64,
		})

		collection.Fields.Add(&core.JSONField{
			Id:      "state_blob",
			Name:    "blob",
			MaxSize: blobMaxSize,
		})

		collection.Fields.Add(&core.AutodateField{
			Id:       "state_updated",
			Name:     "updated",
			OnCreate: true,
			OnUpdate: true,
		})

		collection.AddIndex("idx_app_state_key", true, "`key`", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("app_state")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
