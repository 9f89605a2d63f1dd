package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONList stores a slice as a JSON array column (jsonb on Postgres, text on SQLite).
type JSONList[T any] []T

func (l *JSONList[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = JSONList[T]{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("JSONList: unsupported Scan type %T", src)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*l = JSONList[T]{}
		return nil
	}

	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("JSONList: decode: %w", err)
	}
	*l = JSONList[T](out)
	return nil
}

func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]T(l))
	if err != nil {
		return nil, fmt.Errorf("JSONList: encode: %w", err)
	}
	return string(raw), nil
}

// Append returns a new list with item added at the end; the receiver is untouched.
func (l JSONList[T]) Append(item T) JSONList[T] {
	out := make(JSONList[T], 0, len(l)+1)
	out = append(out, l...)
	return append(out, item)
}
