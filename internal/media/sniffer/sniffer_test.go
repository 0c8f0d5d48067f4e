package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMIME(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00}, "image/png"},
		{"gif", []byte("GIF89a......"), "image/gif"},
		{"webp", append([]byte("RIFF1234"), []byte("WEBPVP8 ")...), "image/webp"},
		{"unknown", []byte("plain text"), DefaultMIME},
		{"empty", nil, DefaultMIME},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectMIME(tc.head))
		})
	}
}
