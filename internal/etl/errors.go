package etl

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var ErrIntegrationDisabled = errors.New("integration is not enabled")

// ConfigError lists the settings a run needs but the config lacks.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "incomplete configuration: " + strings.Join(e.Missing, ", ")
}

// MissingFieldError is raised for a row without a usable code or status value.
type MissingFieldError struct {
	Kind  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s field (%s) not found", e.Kind, e.Field)
}

// InvalidTransformError is raised when a row resolves to an empty name or number.
type InvalidTransformError struct {
	Reason string
}

func (e *InvalidTransformError) Error() string {
	return "invalid transformed data: " + e.Reason
}

type ConnectionKind string

const (
	ConnRefused ConnectionKind = "refused"
	ConnAuth    ConnectionKind = "auth"
	ConnTimeout ConnectionKind = "timeout"
	ConnOther   ConnectionKind = "other"
)

// ConnectionError carries an operator-facing message for a failed connect.
type ConnectionError struct {
	Kind    ConnectionKind
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	return e.Message
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
