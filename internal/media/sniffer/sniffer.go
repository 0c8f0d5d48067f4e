// Package sniffer derives the content type of an uploaded payload from its
// leading bytes. Detection feeds the stored object's Content-Type only; the
// pipeline accepts any payload and falls back to an opaque type.
package sniffer

import "bytes"

const DefaultMIME = "application/octet-stream"

// DetectMIME inspects the payload head and returns the matching image MIME
// type, or DefaultMIME when no known signature matches.
func DetectMIME(head []byte) string {
	switch {
	case isJPEG(head):
		return "image/jpeg"
	case isPNG(head):
		return "image/png"
	case isGIF(head):
		return "image/gif"
	case isWEBP(head):
		return "image/webp"
	default:
		return DefaultMIME
	}
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}
