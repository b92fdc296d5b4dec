// Package extract turns a student delivery (a directory holding a zip
// archive) into the flat list of source files the fingerprinting engine
// consumes.
package extract

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoArchive means a submission directory holds no zip file
var ErrNoArchive = errors.New("no zip archive found in submission")

// FindArchive locates the submission's zip. When a student uploads several,
// candidates are sorted lexicographically and the first wins, so re-runs pick
// the same archive regardless of directory iteration order.
func FindArchive(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.zip"))
	if err != nil {
		return "", fmt.Errorf("failed to list archives in %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", ErrNoArchive
	}
	sort.Strings(matches)
	if len(matches) > 1 {
		log.Warn().
			Str("dir", dir).
			Int("archives", len(matches)).
			Str("chosen", filepath.Base(matches[0])).
			Msg("Multiple zip archives in submission, using the lexicographically first")
	}
	return matches[0], nil
}

// Extract unpacks a zip archive into destDir and returns the project root.
// When the archive wraps everything inside a single top-level directory, that
// directory is the root.
func Extract(zipPath, destDir string) (string, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive %s: %w", filepath.Base(zipPath), err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if err := extractEntry(entry, destDir); err != nil {
			return "", err
		}
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("failed to read extraction dir: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(destDir, entries[0].Name()), nil
	}
	return destDir, nil
}

func extractEntry(entry *zip.File, destDir string) error {
	// Reject entries escaping the extraction root
	cleaned := filepath.Clean(filepath.FromSlash(entry.Name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) || filepath.IsAbs(cleaned) {
		return fmt.Errorf("archive entry escapes extraction root: %s", entry.Name)
	}
	target := filepath.Join(destDir, cleaned)

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", entry.Name, err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to extract %s: %w", entry.Name, err)
	}
	return nil
}

// DetectProjectType reports the build flavor of an extracted project
func DetectProjectType(root string) string {
	if _, err := os.Stat(filepath.Join(root, "pom.xml")); err == nil {
		return "Maven"
	}
	if matches, _ := filepath.Glob(filepath.Join(root, "build.gradle*")); len(matches) > 0 {
		return "Gradle"
	}
	if _, err := os.Stat(filepath.Join(root, "build.xml")); err == nil {
		return "Ant"
	}
	return "Simple Java Project"
}
