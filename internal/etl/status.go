package etl

import (
	"strings"

	"github.com/cleanflow/bedsync/pkg/models"
)

// MapStatus translates an external status token into a location state.
// Comparison is exact after trimming; callers must normalize case themselves.
// The boolean is false when the token is not mapped, which means skip.
func MapStatus(externalStatus string, mappings models.StatusMappings) (models.LocationStatus, bool) {
	token := strings.TrimSpace(externalStatus)
	if token == "" {
		return "", false
	}
	switch {
	case token == mappings.Available:
		return models.StatusAvailable, true
	case token == mappings.Occupied:
		return models.StatusOccupied, true
	case mappings.InCleaning != "" && token == mappings.InCleaning:
		return models.StatusInCleaning, true
	}
	return "", false
}
