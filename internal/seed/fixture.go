package seed

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/witchql/internal/storage"
)

// Record is one (storage, key, value) triple in a fixture file.
type Record struct {
	Storage string `yaml:"storage" json:"storage"`
	Key     string `yaml:"key" json:"key"`
	Value   any    `yaml:"value" json:"value"`
}

// LoadYAMLFixture reads a YAML fixture file (a list of Records) and
// inserts each one into db, creating any storage that doesn't already
// exist. This is the alternate seed format alongside the hand-written
// People fixture.
func LoadYAMLFixture(db *storage.Database, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading fixture %s: %w", path, err)
	}

	var records []Record
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("parsing fixture %s: %w", path, err)
	}

	db.Lock()
	defer db.Unlock()

	created := map[string]bool{}
	for _, rec := range records {
		if !created[rec.Storage] {
			// CreateStorage fails if the storage already exists from a
			// prior fixture load; ignore that specific case here since
			// fixtures are meant to be layered.
			_ = db.CreateStorage(rec.Storage)
			created[rec.Storage] = true
		}

		valueJSON, err := json.Marshal(rec.Value)
		if err != nil {
			return fmt.Errorf("encoding value for %s/%s: %w", rec.Storage, rec.Key, err)
		}
		if err := db.Insert(rec.Storage, rec.Key, string(valueJSON)); err != nil {
			return fmt.Errorf("inserting %s/%s: %w", rec.Storage, rec.Key, err)
		}
	}
	return nil
}
