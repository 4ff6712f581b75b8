// Package validation holds the input schemas enforced before any mutation.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Errors collects schema violations. Its message joins them with "; ".
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, "; ")
}

func (e *Errors) add(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

// Err returns nil when no violation was recorded.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// OptionalID is a nullable foreign key in a partial update. Set reports
// whether the key was present at all; a present null or "" clears it.
type OptionalID struct {
	Set     bool
	ID      *uuid.UUID
	Invalid bool
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.ID = nil
	o.Invalid = false

	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		o.Invalid = true
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		o.Invalid = true
		return nil
	}
	o.ID = &id
	return nil
}

// Value returns the column value for an update map.
func (o OptionalID) Value() any {
	if o.ID == nil {
		return nil
	}
	return *o.ID
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// ParseID validates an id path parameter.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, Errors{"invalid id"}
	}
	return id, nil
}
