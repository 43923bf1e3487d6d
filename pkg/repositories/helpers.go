// Package repositories provides data access for market-engine. Postgres
// repositories hold raw SQL over pgx; the analysis cache is Redis-backed.
package repositories

import "encoding/json"

// jsonbValue marshals a Go value for a JSONB column. A nil-ish value
// serializes as empty object/array per its type.
func jsonbValue(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return data
}

// scanJSONB unmarshals a JSONB column into target, tolerating NULL.
func scanJSONB(data []byte, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}

// nullString returns nil for an empty string so the column stores NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
