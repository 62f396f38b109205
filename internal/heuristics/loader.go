package heuristics

import (
	_ "embed"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTables []byte

// cache stores indexed tables by override path ("" is the built-in set).
// An override entry is reused only while the file's modification time is unchanged.
var (
	cache   = make(map[string]cachedTables)
	cacheMu sync.RWMutex
)

type cachedTables struct {
	tables  *Tables
	modTime time.Time
}

// Default returns the built-in tables. It panics if the embedded YAML is
// malformed, which can only happen at build time.
func Default() *Tables {
	t, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("failed to load built-in heuristics: %v", err))
	}
	return t
}

// Load returns the built-in tables with the YAML file at path applied on top.
// Maps in the override are merged key by key; lists and scalars replace the
// built-in values. An empty path returns the built-in tables.
func Load(path string) (*Tables, error) {
	var modTime time.Time
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, &LoadError{Path: path, Message: "failed to read override file", Cause: err}
		}
		modTime = info.ModTime()
	}

	cacheMu.RLock()
	if c, exists := cache[path]; exists && c.modTime.Equal(modTime) {
		cacheMu.RUnlock()
		return c.tables, nil
	}
	cacheMu.RUnlock()

	var t Tables
	if err := yaml.Unmarshal(defaultTables, &t); err != nil {
		return nil, &LoadError{Path: "(built-in)", Message: "failed to parse tables", Cause: err}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Path: path, Message: "failed to read override file", Cause: err}
		}
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, &LoadError{Path: path, Message: "failed to parse override file", Cause: err}
		}
	}

	if err := t.validate(); err != nil {
		return nil, &LoadError{Path: path, Message: "invalid tables", Cause: err}
	}
	t.index()

	cacheMu.Lock()
	cache[path] = cachedTables{tables: &t, modTime: modTime}
	cacheMu.Unlock()

	return &t, nil
}

// ClearCache clears the tables cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]cachedTables)
	cacheMu.Unlock()
}

func (t *Tables) validate() error {
	if len(t.SectionHeaders) == 0 {
		return fmt.Errorf("section_headers must not be empty")
	}
	if t.Limits.HeaderMaxChars <= 0 {
		return fmt.Errorf("limits.header_max_chars must be positive")
	}
	if t.Limits.EntryMaxWords <= 0 {
		return fmt.Errorf("limits.entry_max_words must be positive")
	}
	if t.Limits.PhoneScanLines < 0 {
		return fmt.Errorf("limits.phone_scan_lines must not be negative")
	}
	if t.Limits.LocationScanLines < 0 {
		return fmt.Errorf("limits.location_scan_lines must not be negative")
	}
	if t.NameWeights.ScanLines <= 0 {
		return fmt.Errorf("name_weights.scan_lines must be positive")
	}
	if t.NameWeights.Reconstructed < t.NameWeights.Standard {
		return fmt.Errorf("name_weights.reconstructed must not be lower than name_weights.standard")
	}
	return nil
}
