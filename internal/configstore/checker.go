package configstore

import (
	"fmt"
	"strings"
)

// Checker inspects an entry value and returns a problem description, or "" when the value is fine.
// present is false when neither a stored value nor a default exists.
type Checker[T any] func(v T, present bool) string

// NoCheck accepts any value, including a missing one.
func NoCheck[T any]() Checker[T] {
	return func(T, bool) string { return "" }
}

// NonNull requires a value to be present.
func NonNull[T any]() Checker[T] {
	return func(_ T, present bool) string {
		if !present {
			return "Required"
		}
		return ""
	}
}

// NonEmpty requires a present, non-blank string.
func NonEmpty() Checker[string] {
	return func(v string, present bool) string {
		if !present || strings.TrimSpace(v) == "" {
			return "Required"
		}
		return ""
	}
}

// IntRange requires a present integer within [minVal, maxVal].
func IntRange(minVal, maxVal int) Checker[int] {
	return func(v int, present bool) string {
		if !present {
			return "Required"
		}
		if v < minVal || v > maxVal {
			return fmt.Sprintf("Must be between %d and %d", minVal, maxVal)
		}
		return ""
	}
}
