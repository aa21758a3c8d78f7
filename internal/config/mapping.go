package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cleanflow/bedsync/pkg/models"
)

// LoadMapping reads a location mapping import file. The file holds either a
// JSON array of mappings or an object with a "mappings" array. Entries
// without "isActive" are imported active.
func LoadMapping(filePath string) ([]models.LocationMapping, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file '%s': %w", filePath, err)
	}

	var raw []json.RawMessage
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &raw)
	} else {
		var obj struct {
			Mappings []json.RawMessage `json:"mappings"`
		}
		err = json.Unmarshal(trimmed, &obj)
		raw = obj.Mappings
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file '%s': %w", filePath, err)
	}

	out := make([]models.LocationMapping, 0, len(raw))
	for i, item := range raw {
		m := models.LocationMapping{IsActive: true}
		if err := json.Unmarshal(item, &m); err != nil {
			return nil, fmt.Errorf("failed to parse mapping #%d in '%s': %w", i+1, filePath, err)
		}
		out = append(out, m)
	}
	return out, nil
}
