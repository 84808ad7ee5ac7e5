package domain

import "time"

// Field accessors for loosely-typed document data. Created-document payloads
// arrive as map[string]any, decoded either from Firestore (native Go types)
// or from Pub/Sub JSON (strings and float64 numbers); wrong-typed values are
// treated as absent rather than errors.

// StringField returns the string value under key, or "" when absent or not a
// string.
func StringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// BoolField returns the bool value under key, or false when absent or not a
// bool.
func BoolField(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

// IntField returns the integer value under key, accepting the numeric types a
// JSON or Firestore decode produces.
func IntField(data map[string]any, key string) int64 {
	switch v := data[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// TimeField returns the timestamp under key, accepting a native time.Time or
// an RFC 3339 string.
func TimeField(data map[string]any, key string) time.Time {
	switch v := data[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
