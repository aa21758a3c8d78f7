package models

import (
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// IntegrationConfigID is the fixed _id of the integration settings document.
const IntegrationConfigID = "integration_settings"

const (
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
	DriverMySQL     = "mysql"
)

type StatusMappings struct {
	Available  string `json:"available" bson:"available"`
	Occupied   string `json:"occupied" bson:"occupied"`
	InCleaning string `json:"in_cleaning,omitempty" bson:"in_cleaning,omitempty"`
}

type FieldMappings struct {
	CodeField   string `json:"codeField" bson:"codeField"`
	StatusField string `json:"statusField" bson:"statusField"`
	NameField   string `json:"nameField,omitempty" bson:"nameField,omitempty"`
	NumberField string `json:"numberField,omitempty" bson:"numberField,omitempty"`
}

type TransformationConfig struct {
	NameSeparator   string `json:"nameSeparator,omitempty" bson:"nameSeparator,omitempty"`
	NamePattern     string `json:"namePattern,omitempty" bson:"namePattern,omitempty" validate:"omitempty,regexp"`
	NumberPattern   string `json:"numberPattern,omitempty" bson:"numberPattern,omitempty" validate:"omitempty,regexp"`
	CustomTransform bool   `json:"customTransform,omitempty" bson:"customTransform,omitempty"`
}

// IntegrationConfig is the singleton that drives the external sync.
type IntegrationConfig struct {
	ID             string               `json:"id" bson:"_id"`
	Enabled        bool                 `json:"enabled" bson:"enabled"`
	Driver         string               `json:"driver" bson:"driver" validate:"oneof=postgres sqlserver mysql"`
	Host           string               `json:"host" bson:"host" validate:"required_if=Enabled true,dbhost"`
	Port           int                  `json:"port" bson:"port" validate:"min=1,max=65535"`
	Database       string               `json:"database" bson:"database" validate:"required_if=Enabled true"`
	Username       string               `json:"username" bson:"username"`
	Password       string               `json:"password,omitempty" bson:"password"`
	SyncInterval   int                  `json:"syncInterval" bson:"syncInterval" validate:"min=1"`
	Query          string               `json:"query" bson:"query" validate:"required_if=Enabled true"`
	StatusMappings StatusMappings       `json:"statusMappings" bson:"statusMappings"`
	FieldMappings  FieldMappings        `json:"fieldMappings" bson:"fieldMappings"`
	Transformation TransformationConfig `json:"transformation" bson:"transformation"`
	LastSync       *time.Time           `json:"lastSync,omitempty" bson:"lastSync,omitempty"`
	LastSyncStats  *SyncStats           `json:"lastSyncStats,omitempty" bson:"lastSyncStats,omitempty"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// DefaultIntegrationConfig returns the document used when none is stored yet.
func DefaultIntegrationConfig() IntegrationConfig {
	now := time.Now()
	return IntegrationConfig{
		ID:           IntegrationConfigID,
		Enabled:      false,
		Driver:       DriverPostgres,
		Port:         5432,
		SyncInterval: 5,
		Query:        "SELECT code1, tipobloq FROM cable1",
		StatusMappings: StatusMappings{
			Available: "L",
			Occupied:  "*",
		},
		FieldMappings: FieldMappings{
			CodeField:   "code1",
			StatusField: "tipobloq",
		},
		Transformation: TransformationConfig{
			NameSeparator: " ",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Redacted returns a copy safe to hand to API clients.
func (c IntegrationConfig) Redacted() IntegrationConfig {
	if c.Password != "" {
		c.Password = "********"
	}
	return c
}

// IntegrationConfigPatch carries the fields a caller wants to change; nil means keep.
type IntegrationConfigPatch struct {
	Enabled        *bool                 `json:"enabled,omitempty"`
	Driver         *string               `json:"driver,omitempty"`
	Host           *string               `json:"host,omitempty"`
	Port           *int                  `json:"port,omitempty"`
	Database       *string               `json:"database,omitempty"`
	Username       *string               `json:"username,omitempty"`
	Password       *string               `json:"password,omitempty"`
	SyncInterval   *int                  `json:"syncInterval,omitempty"`
	Query          *string               `json:"query,omitempty"`
	StatusMappings *StatusMappings       `json:"statusMappings,omitempty"`
	FieldMappings  *FieldMappings        `json:"fieldMappings,omitempty"`
	Transformation *TransformationConfig `json:"transformation,omitempty"`
}

// Apply merges the patch onto cfg and returns the result.
func (p IntegrationConfigPatch) Apply(cfg IntegrationConfig) IntegrationConfig {
	if p.Enabled != nil {
		cfg.Enabled = *p.Enabled
	}
	if p.Driver != nil {
		cfg.Driver = strings.ToLower(strings.TrimSpace(*p.Driver))
	}
	if p.Host != nil {
		cfg.Host = strings.TrimSpace(*p.Host)
	}
	if p.Port != nil {
		cfg.Port = *p.Port
	}
	if p.Database != nil {
		cfg.Database = strings.TrimSpace(*p.Database)
	}
	if p.Username != nil {
		cfg.Username = *p.Username
	}
	// the redacted placeholder round-trips from the API unchanged
	if p.Password != nil && *p.Password != "********" {
		cfg.Password = *p.Password
	}
	if p.SyncInterval != nil {
		cfg.SyncInterval = *p.SyncInterval
	}
	if p.Query != nil {
		cfg.Query = *p.Query
	}
	if p.StatusMappings != nil {
		cfg.StatusMappings = *p.StatusMappings
	}
	if p.FieldMappings != nil {
		cfg.FieldMappings = *p.FieldMappings
	}
	if p.Transformation != nil {
		cfg.Transformation = *p.Transformation
	}
	return cfg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("dbhost", func(fl validator.FieldLevel) bool {
		host := fl.Field().String()
		return host == "" || IsValidHost(host)
	})
	_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
	return v
}

// Validator exposes the shared validator so other packages validate with the same rules.
func Validator() *validator.Validate {
	return validate
}

var hostnameRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// IsValidHost accepts localhost, an IP literal or a dotted host name.
func IsValidHost(host string) bool {
	if host == "localhost" || net.ParseIP(host) != nil {
		return true
	}
	return hostnameRe.MatchString(host)
}

// Validate checks field-level rules before the config is persisted.
func (c IntegrationConfig) Validate() error {
	return validate.Struct(c)
}
