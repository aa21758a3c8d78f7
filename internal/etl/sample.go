package etl

import (
	"fmt"

	"github.com/cleanflow/bedsync/pkg/models"
)

// TransformationPreview shows what the current config makes of sample rows.
type TransformationPreview struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Input   []ExternalRow   `json:"sampleInput,omitempty"`
	Result  TransformResult `json:"result"`
}

// SampleRows builds two rows shaped like the configured external table.
func SampleRows(cfg models.IntegrationConfig) []ExternalRow {
	code, status := cfg.FieldMappings.CodeField, cfg.FieldMappings.StatusField
	return []ExternalRow{
		{code: "QTO101", status: cfg.StatusMappings.Available},
		{code: "APTO202", status: cfg.StatusMappings.Occupied},
	}
}

// TestTransformation runs sample rows through the transformer without touching
// any store or external system.
func TestTransformation(cfg models.IntegrationConfig, mappings []models.LocationMapping) TransformationPreview {
	if cfg.FieldMappings.CodeField == "" || cfg.FieldMappings.StatusField == "" {
		return TransformationPreview{Message: "Configure the code and status fields first."}
	}
	transformer, err := NewTransformer(cfg, mappings)
	if err != nil {
		return TransformationPreview{Message: "Invalid transformation settings: " + err.Error()}
	}

	rows := SampleRows(cfg)
	res := transformer.Transform(rows)
	if !res.Success {
		return TransformationPreview{
			Message: fmt.Sprintf("Transformation failed for %d of %d sample rows.", res.Stats.Errors, res.Stats.Total),
			Input:   rows,
			Result:  res,
		}
	}
	return TransformationPreview{
		Success: true,
		Message: fmt.Sprintf("Transformation OK: %d of %d sample rows mapped.", res.Stats.Transformed, res.Stats.Total),
		Input:   rows,
		Result:  res,
	}
}
