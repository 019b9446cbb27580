// Package seed loads demo/fixture data into a storage.Database. It is an
// ambient/demo concern, not part of the core: the core never seeds
// itself.
package seed

import (
	"fmt"
	"math/rand"

	"github.com/steveyegge/witchql/internal/storage"
)

// namedPeople mirrors the small set of hand-written demo records the
// original fixture loader inserts before generating synthetic ones.
var namedPeople = []struct {
	key   string
	value string
}{
	{"person1", `{"name": "John", "age": 30, "gender": "male"}`},
	{"person2", `{"name": "Jane", "age": 25}`},
	{"person3", `{"name": "Jim", "age": 40}`},
	{"person4", `{"name": "Jopel", "age": 29}`},
	{"person5", `{"name": "Khristina", "age": 22, "gender": "female"}`},
	{"person6", `{"name": "Veronika", "age": 35, "gender": "female", "address": "Mashroom"}`},
}

// DefaultStorageName is the storage the demo fixture seeds into.
const DefaultStorageName = "main"

// DefaultSyntheticCount bounds the generated-record batch well below the
// original fixture's 100,000-record loop, which exists to stress-test a
// running server rather than to populate a usable CLI demo.
const DefaultSyntheticCount = 200

// People seeds db's "main" storage with the hand-written demo records
// plus a bounded batch of randomized synthetic ones. It fails if "main"
// already exists.
func People(db *storage.Database, rng *rand.Rand, syntheticCount int) error {
	db.Lock()
	defer db.Unlock()

	if err := db.CreateStorage(DefaultStorageName); err != nil {
		return err
	}

	for _, p := range namedPeople {
		if err := db.Insert(DefaultStorageName, p.key, p.value); err != nil {
			return fmt.Errorf("seeding %s: %w", p.key, err)
		}
	}

	for i := len(namedPeople) + 1; i < len(namedPeople)+1+syntheticCount; i++ {
		key := fmt.Sprintf("person%d", i)
		age := 18 + rng.Intn(90-18+1)
		gender := "female"
		if rng.Float64() < 0.05 {
			gender = "male"
		}
		value := fmt.Sprintf(`{"name": "Person%d", "age": %d, "gender": "%s"}`, i, age, gender)
		if err := db.Insert(DefaultStorageName, key, value); err != nil {
			return fmt.Errorf("seeding %s: %w", key, err)
		}
	}

	return nil
}
