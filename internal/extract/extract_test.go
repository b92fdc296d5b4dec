package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestFindArchive_PicksLexicographicFirst(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "zeta.zip"), map[string]string{"a.txt": "a"})
	writeZip(t, filepath.Join(dir, "alpha.zip"), map[string]string{"a.txt": "a"})

	got, err := FindArchive(dir)
	require.NoError(t, err)
	assert.Equal(t, "alpha.zip", filepath.Base(got))
}

func TestFindArchive_NoArchive(t *testing.T) {
	_, err := FindArchive(t.TempDir())
	assert.ErrorIs(t, err, ErrNoArchive)
}

func TestExtract_DescendsIntoSingleRootDir(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "entrega.zip")
	writeZip(t, zipPath, map[string]string{
		"proyecto/src/Main.java": "class Main {}",
		"proyecto/pom.xml":       "<project/>",
	})

	dest := t.TempDir()
	root, err := Extract(zipPath, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "proyecto"), root)

	_, err = os.Stat(filepath.Join(root, "src", "Main.java"))
	assert.NoError(t, err)
}

func TestExtract_FlatArchiveUsesDest(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "entrega.zip")
	writeZip(t, zipPath, map[string]string{
		"Main.java": "class Main {}",
		"App.java":  "class App {}",
	})

	dest := t.TempDir()
	root, err := Extract(zipPath, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, root)
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	writeZip(t, zipPath, map[string]string{"../escape.txt": "nope"})

	_, err := Extract(zipPath, t.TempDir())
	require.Error(t, err)
}

func TestDetectProjectType(t *testing.T) {
	maven := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(maven, "pom.xml"), []byte("<project/>"), 0o644))
	assert.Equal(t, "Maven", DetectProjectType(maven))

	gradle := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(gradle, "build.gradle.kts"), []byte(""), 0o644))
	assert.Equal(t, "Gradle", DetectProjectType(gradle))

	ant := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ant, "build.xml"), []byte("<project/>"), 0o644))
	assert.Equal(t, "Ant", DetectProjectType(ant))

	assert.Equal(t, "Simple Java Project", DetectProjectType(t.TempDir()))
}

func scanFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/Main.java":            "class Main {}",
		"src/test/MainTest.java":   "class MainTest {}",
		"pom.xml":                  "<project/>",
		"README.md":                "# readme",
		"app.jar":                  "binary",
		"target/classes/Main.java": "compiled copy",
		".git/config":              "[core]",
		"notes.docx":               "binary doc",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestScan_JavaOnlyMode(t *testing.T) {
	files, err := Scan(scanFixture(t), ScanOptions{Extensions: JavaOnlyExtensions, IncludeTests: true})
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.RelativePath)
	}
	// pom.xml is a well-known build file, always captured; target/ and .git/
	// are excluded, binaries skipped.
	assert.Equal(t, []string{"pom.xml", "src/Main.java", "src/test/MainTest.java"}, paths)
}

func TestScan_ExcludesTestDirs(t *testing.T) {
	files, err := Scan(scanFixture(t), ScanOptions{Extensions: JavaOnlyExtensions, IncludeTests: false})
	require.NoError(t, err)

	for _, f := range files {
		assert.NotContains(t, f.RelativePath, "test")
	}
}

func TestScan_FullMode(t *testing.T) {
	files, err := Scan(scanFixture(t), ScanOptions{Extensions: FullProjectExtensions, IncludeTests: true})
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.RelativePath)
	}
	assert.Contains(t, paths, "README.md")
	assert.NotContains(t, paths, "app.jar")
	assert.NotContains(t, paths, "notes.docx")
	assert.NotContains(t, paths, "target/classes/Main.java")
}

func TestScan_SortedOutput(t *testing.T) {
	files, err := Scan(scanFixture(t), ScanOptions{Extensions: FullProjectExtensions, IncludeTests: true})
	require.NoError(t, err)
	for i := 1; i < len(files); i++ {
		assert.Less(t, files[i-1].RelativePath, files[i].RelativePath)
	}
}

func TestParseExtensions(t *testing.T) {
	set := ParseExtensions("java, XML,.properties, ")
	assert.Equal(t, map[string]bool{".java": true, ".xml": true, ".properties": true}, set)
}
