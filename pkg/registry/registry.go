// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"trip-assistant/internal/models"
)

//go:embed intents.json
var defaultTaxonomy []byte

// LoadRegistry reads a taxonomy file. An empty path loads the built-in taxonomy.
func LoadRegistry(path string) (*IntentRegistry, error) {
	data := defaultTaxonomy
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return Parse(data)
}

// Default returns the built-in taxonomy.
func Default() *IntentRegistry {
	reg, err := Parse(defaultTaxonomy)
	if err != nil {
		panic(fmt.Sprintf("built-in intent taxonomy is invalid: %v", err))
	}
	return reg
}

func Parse(data []byte) (*IntentRegistry, error) {
	var reg IntentRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode intent registry: %w", err)
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(reg.Intents, func(i, j int) bool {
		return reg.Intents[i].Priority < reg.Intents[j].Priority
	})
	if err := reg.checkOrder(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// checkOrder requires exactly the known intents, in fallback priority order,
// with the last one as the catch-all.
func (r *IntentRegistry) checkOrder() error {
	ids := r.IDs()
	if len(ids) != len(models.Intents) {
		return fmt.Errorf("intent registry must define %d intents, found %d", len(models.Intents), len(ids))
	}
	for i, want := range models.Intents {
		if ids[i] != string(want) {
			if !models.Intent(ids[i]).Valid() {
				return fmt.Errorf("unknown intent %q", ids[i])
			}
			return fmt.Errorf("intent %s has priority position %d, want %s", ids[i], i+1, want)
		}
	}
	if r.DefaultIntent().ID != string(models.IntentGeneralQuestion) {
		return fmt.Errorf("default intent must be %s", models.IntentGeneralQuestion)
	}
	return nil
}

func (r *IntentRegistry) validate() error {
	if len(r.Intents) == 0 {
		return fmt.Errorf("intent registry has no intents")
	}
	seen := make(map[string]bool, len(r.Intents))
	defaults := 0
	for _, def := range r.Intents {
		if def.ID == "" {
			return fmt.Errorf("intent registry entry without id")
		}
		if seen[def.ID] {
			return fmt.Errorf("intent %s defined twice", def.ID)
		}
		seen[def.ID] = true
		if def.Default {
			defaults++
		}
	}
	if defaults != 1 {
		return fmt.Errorf("intent registry needs exactly one default intent, found %d", defaults)
	}
	return nil
}

// IDs returns intent ids in priority order.
func (r *IntentRegistry) IDs() []string {
	ids := make([]string, len(r.Intents))
	for i, def := range r.Intents {
		ids[i] = def.ID
	}
	return ids
}

// DefaultIntent returns the catch-all intent.
func (r *IntentRegistry) DefaultIntent() IntentDefinition {
	for _, def := range r.Intents {
		if def.Default {
			return def
		}
	}
	return r.Intents[len(r.Intents)-1]
}

func (r *IntentRegistry) Find(id string) (IntentDefinition, bool) {
	for _, def := range r.Intents {
		if def.ID == id {
			return def, true
		}
	}
	return IntentDefinition{}, false
}
