// Package fingerprint derives stable digests from campaign configuration.
// A campaign's fingerprint decides whether its stored sessions can be
// reused across restarts: identical configuration yields an identical
// fingerprint regardless of input ordering.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// Fingerprint is a hex-encoded SHA-256 digest of a campaign's
// configuration tuple.
type Fingerprint string

// fieldSeparator joins the canonical serialization segments. It must not
// occur in target or platform names; names are sanitized on input.
const fieldSeparator = "\x1f"

// Compute returns the fingerprint of the (targets, platforms, interval)
// tuple. The input slices are not modified; ordering and duplicates do
// not affect the result.
func Compute(targets, platforms []string, interval time.Duration) Fingerprint {
	canonical := strings.Join([]string{
		canonicalize(targets),
		canonicalize(platforms),
		interval.String(),
	}, fieldSeparator)

	sum := sha256.Sum256([]byte(canonical))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// canonicalize sorts and deduplicates values into a stable serialization.
func canonicalize(values []string) string {
	cleaned := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ReplaceAll(strings.TrimSpace(v), fieldSeparator, "")
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		cleaned = append(cleaned, v)
	}
	sort.Strings(cleaned)
	return strings.Join(cleaned, ",")
}
