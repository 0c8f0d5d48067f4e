package naming

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveLogicalID(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		want     string
	}{
		{"plain", "sunset.jpg", "sunset"},
		{"accented", "Foto Aniversário.jpg", "foto_aniversario"},
		{"mixed separators", "My Photo--2024 (final).PNG", "my_photo_2024_final"},
		{"collapses underscores", "a__b.png", "a_b"},
		{"trims edges", "--hello--.gif", "hello"},
		{"no extension", "snapshot", "snapshot"},
		{"keeps digits", "IMG_20240101.jpeg", "img_20240101"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveLogicalID(tc.filename))
		})
	}
}

func TestDeriveLogicalIDDeterministic(t *testing.T) {
	a := DeriveLogicalID("Foto Aniversário.jpg")
	b := DeriveLogicalID("Foto Aniversário.jpg")
	assert.Equal(t, a, b)
}

func TestDeriveLogicalIDDegenerateInputIsRandom(t *testing.T) {
	a := DeriveLogicalID("£££.png")
	b := DeriveLogicalID("£££.png")

	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	assert.True(t, len(a) > len("img_"))
	assert.NotEqual(t, a, b, "degenerate names must not collide on a fixed token")
}

func TestHashContent(t *testing.T) {
	payload := []byte("relume")

	assert.Equal(t, HashContent(payload), HashContent(payload))
	assert.Len(t, HashContent(payload), 64)
	assert.NotEqual(t, HashContent(payload), HashContent([]byte("relume2")))
}

func TestTimestampVersion(t *testing.T) {
	instant := time.Date(2024, 5, 17, 9, 30, 45, 0, time.UTC)

	v := TimestampVersion(instant)
	assert.Equal(t, "20240517T093045Z", v)

	later := TimestampVersion(instant.Add(time.Second))
	assert.True(t, v < later, "versions must sort lexicographically in time order")
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("foto_aniversario", "20240517T093045Z", "Foto Aniversário.jpg")
	assert.Equal(t, "foto_aniversario/v20240517T093045Z/Foto Aniversário.jpg", key)
}
