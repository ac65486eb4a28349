// Package prompts embeds the LLM prompt catalog and resolves prompts by
// file and key. Keeping prompt text out of Go source lets it be reviewed
// and tuned without touching the calling code.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

var (
	mu     sync.Mutex
	loaded = make(map[string]map[string]string)
)

// Get returns the prompt stored under key in the named catalog file
// (e.g. "regeneration.json"). The file is parsed once and cached.
func Get(filename, key string) (string, error) {
	catalog, err := load(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := catalog[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts required at initialization time; a missing
// prompt is a packaging defect, so it panics.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format substitutes {{.Key}} placeholders in a prompt with values from
// data. Placeholders without a value are left in place.
func Format(prompt string, data map[string]string) string {
	for key, value := range data {
		prompt = strings.ReplaceAll(prompt, "{{."+key+"}}", value)
	}
	return prompt
}

// Keys lists the prompt keys available in the named catalog file, sorted.
func Keys(filename string) ([]string, error) {
	catalog, err := load(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(catalog))
	for key := range catalog {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func load(filename string) (map[string]string, error) {
	mu.Lock()
	defer mu.Unlock()

	if catalog, ok := loaded[filename]; ok {
		return catalog, nil
	}

	data, err := files.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	var catalog map[string]string
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	loaded[filename] = catalog
	return catalog, nil
}
