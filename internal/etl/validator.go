package etl

import (
	"strings"

	"github.com/cleanflow/bedsync/pkg/models"
)

// ValidateForSync lists every setting a run needs that cfg lacks.
// An empty result means the config is complete enough to fetch.
func ValidateForSync(cfg models.IntegrationConfig) []string {
	var missing []string
	check := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	check(cfg.Host, "host")
	check(cfg.Database, "database")
	check(cfg.Query, "query")
	check(cfg.FieldMappings.CodeField, "code field (codeField)")
	check(cfg.FieldMappings.StatusField, "status field (statusField)")
	check(cfg.StatusMappings.Available, "available status mapping")
	check(cfg.StatusMappings.Occupied, "occupied status mapping")
	if cfg.Port <= 0 || cfg.Port > 65535 {
		missing = append(missing, "port")
	}
	if cfg.Transformation.CustomTransform &&
		(cfg.Transformation.NamePattern == "" || cfg.Transformation.NumberPattern == "") {
		missing = append(missing, "namePattern and numberPattern")
	}
	return missing
}
