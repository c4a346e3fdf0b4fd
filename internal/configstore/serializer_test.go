package configstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstantSerializer(t *testing.T) {
	s := InstantSerializer{}
	at := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)

	assert.Equal(t, "1704114000", s.Serialize(at))

	got, err := s.Deserialize("1704114000")
	require.NoError(t, err)
	assert.True(t, at.Equal(got))

	_, err = s.Deserialize("2024-01-01")
	require.Error(t, err)
}

func TestIntSerializer(t *testing.T) {
	s := IntSerializer{}
	got, err := s.Deserialize(" 58642 ")
	require.NoError(t, err)
	assert.Equal(t, 58642, got)
	assert.Equal(t, "58642", s.Serialize(got))

	_, err = s.Deserialize("5.5")
	require.Error(t, err)
}

func TestCheckers(t *testing.T) {
	r := IntRange(1024, 65535)
	assert.Empty(t, r(1024, true))
	assert.Empty(t, r(65535, true))
	assert.Equal(t, "Must be between 1024 and 65535", r(1023, true))
	assert.Equal(t, "Required", r(0, false))

	assert.Equal(t, "Required", NonNull[string]()("", false))
	assert.Empty(t, NonNull[string]()("", true))
	assert.Empty(t, NoCheck[string]()("", false))

	ne := NonEmpty()
	assert.Equal(t, "Required", ne("", false))
	assert.Equal(t, "Required", ne("", true))
	assert.Equal(t, "Required", ne(" \t", true))
	assert.Empty(t, ne("902fe6b9", true))
}
