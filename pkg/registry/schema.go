// pkg/registry/schema.go
package registry

// IntentRegistry is the intent taxonomy: what each intent means and which
// keywords select it when the model is unavailable.
type IntentRegistry struct {
	Version     string             `json:"version"`
	LastUpdated string             `json:"lastUpdated"`
	Intents     []IntentDefinition `json:"intents"`
}

type IntentDefinition struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	// Priority orders keyword matching, lowest first.
	Priority int      `json:"priority"`
	Keywords []string `json:"keywords"`
	Examples []string `json:"examples"`
	// Default marks the intent used when nothing matches.
	Default bool `json:"default,omitempty"`
}
