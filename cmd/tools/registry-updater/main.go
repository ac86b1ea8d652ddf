// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trip-assistant/internal/assistant/intent"
	"trip-assistant/internal/common/logger"
	"trip-assistant/internal/models"
	"trip-assistant/pkg/registry"
)

const defaultPath = "pkg/registry/intents.json"

func main() {
	keywordCmd := flag.NewFlagSet("add-keyword", flag.ExitOnError)
	exampleCmd := flag.NewFlagSet("add-example", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	classifyCmd := flag.NewFlagSet("classify", flag.ExitOnError)

	var path string
	for _, fs := range []*flag.FlagSet{keywordCmd, exampleCmd, updateCmd, validateCmd, classifyCmd} {
		fs.StringVar(&path, "path", defaultPath, "Path to the intent taxonomy file")
	}

	kwID := keywordCmd.String("id", "", "Intent ID (e.g., SEARCH_PLACES)")
	kwValue := keywordCmd.String("keyword", "", "Keyword to add; matched case-insensitively as a substring")

	exID := exampleCmd.String("id", "", "Intent ID")
	exValue := exampleCmd.String("example", "", "Example phrasing shown to the model")

	upID := updateCmd.String("id", "", "Intent ID to update")
	field := updateCmd.String("field", "", "Field to update (displayName, description, priority)")
	value := updateCmd.String("value", "", "New value for the field")

	query := classifyCmd.String("query", "", "Query to classify with the keyword rules")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add-keyword":
		keywordCmd.Parse(os.Args[2:])
		if *kwID == "" || strings.TrimSpace(*kwValue) == "" {
			fmt.Println("Error: id and keyword are required for add-keyword.")
			keywordCmd.Usage()
			os.Exit(1)
		}
		err = edit(path, *kwID, func(def *registry.IntentDefinition) error {
			return appendUnique(&def.Keywords, strings.ToLower(strings.TrimSpace(*kwValue)))
		})

	case "add-example":
		exampleCmd.Parse(os.Args[2:])
		if *exID == "" || strings.TrimSpace(*exValue) == "" {
			fmt.Println("Error: id and example are required for add-example.")
			exampleCmd.Usage()
			os.Exit(1)
		}
		err = edit(path, *exID, func(def *registry.IntentDefinition) error {
			return appendUnique(&def.Examples, strings.TrimSpace(*exValue))
		})

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *upID == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err = edit(path, *upID, func(def *registry.IntentDefinition) error {
			return setField(def, *field, *value)
		})

	case "validate":
		validateCmd.Parse(os.Args[2:])
		var reg *registry.IntentRegistry
		if reg, err = registry.LoadRegistry(path); err == nil {
			err = validate(reg)
		}
		if err == nil {
			fmt.Printf("Taxonomy validation passed. Found %d intents.\n", len(reg.Intents))
		}

	case "classify":
		classifyCmd.Parse(os.Args[2:])
		err = classify(path, *query)

	case "help":
		help()
		return

	default:
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// edit loads the taxonomy, applies fn to one intent, revalidates and saves.
func edit(path, id string, fn func(def *registry.IntentDefinition) error) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}

	found := false
	for i := range reg.Intents {
		if reg.Intents[i].ID == id {
			found = true
			if err := fn(&reg.Intents[i]); err != nil {
				return err
			}
			break
		}
	}
	if !found {
		return fmt.Errorf("intent %s not found", id)
	}
	if err := validate(reg); err != nil {
		return err
	}

	reg.LastUpdated = time.Now().Format("2006-01-02")
	if err := save(reg, path); err != nil {
		return err
	}
	fmt.Printf("Updated intent %s\n", id)
	return nil
}

func appendUnique(list *[]string, v string) error {
	for _, existing := range *list {
		if strings.EqualFold(existing, v) {
			return fmt.Errorf("%q is already listed", v)
		}
	}
	*list = append(*list, v)
	return nil
}

func setField(def *registry.IntentDefinition, field, value string) error {
	switch field {
	case "displayName":
		def.DisplayName = value
	case "description":
		def.Description = value
	case "priority":
		p, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid priority value: %w", err)
		}
		def.Priority = p
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

// validate checks what the classifier relies on beyond the structural rules
// the registry enforces on load.
func validate(reg *registry.IntentRegistry) error {
	owner := make(map[string]string)
	for _, def := range reg.Intents {
		if !models.Intent(def.ID).Valid() {
			return fmt.Errorf("intent %s is not handled by the assistant", def.ID)
		}
		if def.DisplayName == "" {
			return fmt.Errorf("intent %s missing required field: displayName", def.ID)
		}
		if len(def.Examples) == 0 {
			return fmt.Errorf("intent %s needs at least one example", def.ID)
		}
		if !def.Default && len(def.Keywords) == 0 {
			return fmt.Errorf("intent %s needs at least one keyword", def.ID)
		}
		for _, kw := range def.Keywords {
			key := strings.ToLower(kw)
			if prev, ok := owner[key]; ok && prev != def.ID {
				return fmt.Errorf("keyword %q is listed for both %s and %s", kw, prev, def.ID)
			}
			owner[key] = def.ID
		}
	}
	for _, id := range models.Intents {
		if _, ok := reg.Find(string(id)); !ok {
			return fmt.Errorf("intent %s is missing from the taxonomy", id)
		}
	}
	return nil
}

func classify(path, query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required for classify")
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}
	classifier, err := intent.New(&intent.Config{ConfidenceThreshold: 1}, nil, reg, logger.NewNoOpLogger())
	if err != nil {
		return err
	}
	result := classifier.ClassifyByKeywords(query)
	fmt.Printf("%s (confidence %.2f): %s\n", result.Intent, result.Confidence, result.Reasoning)
	return nil
}

func save(reg *registry.IntentRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal taxonomy: %w", err)
	}
	if _, err := registry.Parse(data); err != nil {
		return fmt.Errorf("refusing to write invalid taxonomy: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write taxonomy file: %w", err)
	}
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add-keyword  Add a fallback keyword to an intent
  add-example  Add an example phrasing to an intent
  update       Update an intent's displayName, description or priority
  validate     Validate the taxonomy file
  classify     Show which intent the keyword rules pick for a query
  help         Show this help message

Examples:
  registry-updater add-keyword -id SEARCH_PLACES -keyword "카페"
  registry-updater update -id CREATE_ROUTE -field priority -value 1
  registry-updater classify -query "제주 맛집 알려줘"

Use 'registry-updater <command> -h' for more information about a command.
`)
}
