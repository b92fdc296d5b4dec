package extract

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mvallespi/dupscan/internal/models"
)

// excludedDirs are never descended into
var excludedDirs = map[string]bool{
	".git": true, ".idea": true, ".vscode": true, ".settings": true,
	"target": true, "build": true, "out": true, "bin": true,
	"node_modules": true, ".gradle": true, ".mvn": true,
	"__pycache__": true, ".pytest_cache": true,
}

// binaryExtensions are skipped regardless of the selected extension set
var binaryExtensions = map[string]bool{
	".class": true, ".jar": true, ".war": true, ".ear": true,
	".zip": true, ".tar": true, ".gz": true, ".7z": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".pdf": true, ".doc": true, ".docx": true,
}

// wellKnownFiles are build descriptors included whatever the extension set
var wellKnownFiles = map[string]bool{
	"pom.xml": true, "build.gradle": true, "settings.gradle": true,
	"gradlew": true, "mvnw": true,
}

// JavaOnlyExtensions is the source-only conversion mode
var JavaOnlyExtensions = map[string]bool{".java": true}

// FullProjectExtensions is the sources-plus-configuration conversion mode
var FullProjectExtensions = map[string]bool{
	".java": true, ".xml": true, ".properties": true, ".yaml": true, ".yml": true,
	".gradle": true, ".kts": true, ".md": true, ".txt": true, ".json": true,
	".sql": true, ".sh": true, ".bat": true, ".cmd": true,
}

// ParseExtensions builds a custom extension set from a comma-separated list,
// tolerating entries without the leading dot.
func ParseExtensions(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// ScanOptions selects which files a scan captures
type ScanOptions struct {
	Extensions   map[string]bool
	IncludeTests bool
}

// Scan walks an extracted project and captures every selected file, sorted by
// relative path. Relative paths use forward slashes so digests computed from
// them agree across platforms.
func Scan(root string, opts ScanOptions) ([]models.SourceFile, error) {
	var files []models.SourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if excludedDirs[name] {
				return filepath.SkipDir
			}
			if !opts.IncludeTests && strings.Contains(strings.ToLower(name), "test") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if binaryExtensions[ext] {
			return nil
		}
		if !opts.Extensions[ext] && !wellKnownFiles[strings.ToLower(d.Name())] {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", path, err)
		}

		files = append(files, models.SourceFile{
			RelativePath: filepath.ToSlash(rel),
			Raw:          raw,
			Extension:    ext,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	return files, nil
}
