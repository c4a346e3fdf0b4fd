package configstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Serializer converts entry values to and from their stored string form.
type Serializer[T any] interface {
	Serialize(v T) string
	Deserialize(s string) (T, error)
}

// StringSerializer stores strings unchanged.
type StringSerializer struct{}

func (StringSerializer) Serialize(v string) string { return v }

func (StringSerializer) Deserialize(s string) (string, error) { return s, nil }

// IntSerializer stores integers in base 10.
type IntSerializer struct{}

func (IntSerializer) Serialize(v int) string { return strconv.Itoa(v) }

func (IntSerializer) Deserialize(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return v, nil
}

// InstantSerializer stores timestamps as Unix epoch seconds.
type InstantSerializer struct{}

func (InstantSerializer) Serialize(v time.Time) string { return strconv.FormatInt(v.Unix(), 10) }

func (InstantSerializer) Deserialize(s string) (time.Time, error) {
	sec, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("not an epoch second: %q", s)
	}
	return time.Unix(sec, 0), nil
}
