// Package normalize canonicalizes file text and derives a stable content
// hash so that cosmetic edits — line-ending churn, trailing whitespace —
// never trigger a re-index.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Text canonicalizes s: CRLF (and a lone CR) is collapsed to LF, trailing
// ASCII whitespace (spaces, tabs) is stripped from every line, and trailing
// newlines are trimmed from the end of the text. No other transformation is
// applied — no case folding, no Unicode normalization.
// Text is idempotent: Text(Text(s)) == Text(s).
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	joined := strings.Join(lines, "\n")

	// A trailing newline (or run of blank trailing lines) is insignificant:
	// it carries no content, so it is trimmed along with per-line trailing
	// whitespace. This keeps the hash stable across editors that do or do
	// not add a final newline.
	return strings.TrimRight(joined, "\n")
}

// Hash returns the lowercase hex SHA-256 digest of the normalized byte
// sequence of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(Text(s)))
	return hex.EncodeToString(sum[:])
}
