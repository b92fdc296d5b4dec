// Package fingerprint canonicalizes source text and derives the content
// digests that identify files and whole submissions. Two files that differ
// only in indentation, trailing whitespace or blank lines hash equal; renames
// and reformatting never change a digest, edits to code or comments always do.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// projectSeparator joins normalized file contents before hashing the whole
// project. Fixed so digests stay comparable across sessions.
const projectSeparator = "\n"

// fingerprintExtensions is the set of extensions that take part in
// fingerprinting. Deliberately fixed to the Java source extension: the
// consolidation extension configuration must not change what similarity
// analysis sees.
var fingerprintExtensions = map[string]bool{
	".java": true,
}

// Eligible reports whether files with the given extension are fingerprinted
func Eligible(extension string) bool {
	return fingerprintExtensions[strings.ToLower(extension)]
}

// Normalize decodes raw bytes through the codec chain and canonicalizes the
// text: per-line leading/trailing whitespace stripped, blank lines removed.
// Identifiers, literals and comments are preserved.
func Normalize(raw []byte) (string, error) {
	text, err := Decode(raw)
	if err != nil {
		return "", err
	}
	return NormalizeText(text), nil
}

// NormalizeText canonicalizes already-decoded text
func NormalizeText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// NormalizedFile pairs a submission-relative path with normalized content
type NormalizedFile struct {
	Path    string
	Content string
}

// FileDigest hashes normalized content. Path and name play no part: identical
// content under different names produces an identical digest.
func FileDigest(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// ProjectDigest hashes a whole submission. Files are sorted by path in byte
// order before concatenation, so the digest is independent of traversal
// order: identical file sets with identical content always hash equal.
func ProjectDigest(files []NormalizedFile) string {
	ordered := make([]NormalizedFile, len(files))
	copy(ordered, files)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Path < ordered[j].Path
	})

	h := sha256.New()
	for i, f := range ordered {
		if i > 0 {
			h.Write([]byte(projectSeparator))
		}
		h.Write([]byte(f.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CountLines reports the line count of decoded content, counting the final
// unterminated line the way the reporting always has.
func CountLines(content string) int {
	return strings.Count(content, "\n") + 1
}
