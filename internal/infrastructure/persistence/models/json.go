package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONColumn stores V as a jsonb column
type JSONColumn[V any] struct {
	V V
}

// NewJSONColumn wraps v for storage
func NewJSONColumn[V any](v V) JSONColumn[V] {
	return JSONColumn[V]{V: v}
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (c JSONColumn[V]) Value() (driver.Value, error) {
	b, err := json.Marshal(c.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (c *JSONColumn[V]) Scan(value any) error {
	var zero V
	if value == nil {
		c.V = zero
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan JSON column: unsupported type %T", value)
	}

	if len(bytes) == 0 {
		c.V = zero
		return nil
	}
	return json.Unmarshal(bytes, &c.V)
}
