package etl

import (
	"time"

	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/cleanflow/bedsync/pkg/utils"
	"go.uber.org/zap"
)

// Transformer turns external rows into candidate locations for one config.
type Transformer struct {
	config models.IntegrationConfig
	parser *CodeParser
	now    func() time.Time
	log    *zap.Logger
}

// NewTransformer fails only when the configured patterns are unusable.
func NewTransformer(cfg models.IntegrationConfig, mappings []models.LocationMapping) (*Transformer, error) {
	parser, err := NewCodeParser(cfg.Transformation, mappings)
	if err != nil {
		return nil, err
	}
	return &Transformer{
		config: cfg,
		parser: parser,
		now:    time.Now,
		log:    logger.Named("transform"),
	}, nil
}

// TransformItem maps one row. A nil candidate with a nil error means the
// row's status is not mapped and the row is skipped.
func (t *Transformer) TransformItem(row ExternalRow) (*models.CandidateLocation, error) {
	fields := t.config.FieldMappings

	code := utils.ValueToString(row[fields.CodeField])
	if code == "" {
		return nil, &MissingFieldError{Kind: "code", Field: fields.CodeField}
	}
	externalStatus := utils.ValueToString(row[fields.StatusField])
	if externalStatus == "" {
		return nil, &MissingFieldError{Kind: "status", Field: fields.StatusField}
	}

	status, ok := MapStatus(externalStatus, t.config.StatusMappings)
	if !ok {
		t.log.Debug("unmapped status, skipping row",
			zap.String("code", code), zap.String("externalStatus", externalStatus))
		return nil, nil
	}

	parsed := t.parser.Parse(code)
	if !t.parser.HasOverride(code) {
		// explicit name/number columns beat anything guessed from the code
		if fields.NameField != "" {
			if v := utils.ValueToString(row[fields.NameField]); v != "" {
				parsed.Name = v
			}
		}
		if fields.NumberField != "" {
			if v := utils.ValueToString(row[fields.NumberField]); v != "" {
				parsed.Number = v
			}
		}
	}

	if parsed.Name == "" || parsed.Number == "" {
		return nil, &InvalidTransformError{Reason: "name or number is empty for code " + code}
	}

	return &models.CandidateLocation{
		Name:               parsed.Name,
		Number:             parsed.Number,
		Status:             status,
		ExternalCode:       code,
		ExternalStatus:     externalStatus,
		LastExternalUpdate: t.now(),
	}, nil
}

type TransformStats struct {
	Total       int `json:"total"`
	Transformed int `json:"transformed"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
}

type ItemError struct {
	Row   ExternalRow `json:"originalData"`
	Error string      `json:"error"`
}

type TransformResult struct {
	Success bool                       `json:"success"`
	Data    []models.CandidateLocation `json:"data"`
	Stats   TransformStats             `json:"stats"`
	Errors  []ItemError                `json:"errors"`
}

// Transform maps every row; a failing row is recorded and the batch goes on.
func (t *Transformer) Transform(rows []ExternalRow) TransformResult {
	res := TransformResult{
		Data:   make([]models.CandidateLocation, 0, len(rows)),
		Errors: []ItemError{},
	}
	res.Stats.Total = len(rows)

	for _, row := range rows {
		candidate, err := t.TransformItem(row)
		switch {
		case err != nil:
			res.Stats.Errors++
			res.Errors = append(res.Errors, ItemError{Row: row, Error: err.Error()})
		case candidate == nil:
			res.Stats.Skipped++
		default:
			res.Stats.Transformed++
			res.Data = append(res.Data, *candidate)
		}
	}

	res.Success = res.Stats.Errors == 0
	t.log.Info("transformation finished",
		zap.Int("total", res.Stats.Total),
		zap.Int("transformed", res.Stats.Transformed),
		zap.Int("skipped", res.Stats.Skipped),
		zap.Int("errors", res.Stats.Errors))
	return res
}
