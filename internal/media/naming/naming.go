package naming

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/segmentio/ksuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// DeriveLogicalID turns an original filename into a stable, filesystem-safe
// identifier: extension stripped, diacritics folded, lower-cased, every run
// of characters outside [a-z0-9_] replaced by a single underscore, edges
// trimmed. Degenerate inputs (empty, punctuation-only) get a random token
// instead, so the result is never empty.
func DeriveLogicalID(filename string) string {
	stem := strings.TrimSuffix(filename, path.Ext(filename))
	if folded, _, err := transform.String(deaccent, stem); err == nil {
		stem = folded
	}
	stem = strings.ToLower(stem)

	var b strings.Builder
	b.Grow(len(stem))
	lastUnderscore := false
	for _, r := range stem {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	id := strings.Trim(b.String(), "_")
	if id == "" {
		return "img_" + strings.ToLower(ksuid.New().String())
	}
	return id
}

// HashContent returns the hex sha256 digest of the payload. Used as an
// integrity/display field only, never as a dedup key.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// TimestampVersion formats an instant as a second-precision UTC version
// token. The format is URL-safe and sorts lexicographically in time order.
// Two uploads of the same logical id within one second share a version and
// the later write wins under that key.
func TimestampVersion(now time.Time) string {
	return now.UTC().Format("20060102T150405Z")
}

// ObjectKey builds the composite storage key for one stored revision.
func ObjectKey(logicalID, version, originalName string) string {
	return path.Join(logicalID, "v"+version, originalName)
}
