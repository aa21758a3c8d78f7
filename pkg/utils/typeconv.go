package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NormalizeSQLValue converts driver values into plain scalars: byte slices
// become strings, everything else passes through.
func NormalizeSQLValue(val interface{}) interface{} {
	if b, ok := val.([]byte); ok {
		return string(b)
	}
	return val
}

// ValueToString renders an untyped row value as a trimmed string. Nil
// yields "" so callers can treat it as absent.
func ValueToString(val interface{}) string {
	if val == nil {
		return ""
	}
	switch v := val.(type) {
	case []byte:
		return strings.TrimSpace(string(v))
	case time.Time:
		return v.Format(time.RFC3339)
	case primitive.DateTime:
		return v.Time().Format(time.RFC3339)
	}
	s, err := cast.ToStringE(val)
	if err != nil {
		s = fmt.Sprintf("%v", val)
	}
	return strings.TrimSpace(s)
}

// ConvertToInt is lenient about the numeric types drivers and JSON hand back.
func ConvertToInt(val interface{}) (int, error) {
	switch v := val.(type) {
	case []byte:
		return cast.ToIntE(strings.TrimSpace(string(v)))
	case string:
		return cast.ToIntE(strings.TrimSpace(v))
	}
	return cast.ToIntE(val)
}
