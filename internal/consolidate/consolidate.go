// Package consolidate renders one submission into a single Markdown-formatted
// text document for human review. The line and file counts it produces feed
// the stored fingerprint record.
package consolidate

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/mvallespi/dupscan/internal/fingerprint"
	"github.com/mvallespi/dupscan/internal/models"
)

// treeLimit caps the directory-tree section so huge projects stay readable
const treeLimit = 50

var fenceLangs = map[string]string{
	".java": "java", ".xml": "xml", ".properties": "properties",
	".gradle": "gradle", ".kts": "kotlin", ".yaml": "yaml", ".yml": "yaml",
	".json": "json", ".sql": "sql", ".md": "markdown", ".sh": "bash",
	".bat": "batch", ".txt": "text",
}

// Metadata describes the submission being consolidated
type Metadata struct {
	SubmissionID string
	ProjectName  string
	ProjectType  string
	ModeName     string
}

// Stats summarizes a consolidation pass
type Stats struct {
	TotalFiles  int
	TotalLines  int
	JavaFiles   int
	ConfigFiles int
}

// GenerateFile renders the consolidated document to path
func GenerateFile(outPath string, meta Metadata, files []models.DecodedFile) (Stats, error) {
	f, err := os.Create(outPath)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create consolidated file: %w", err)
	}
	defer f.Close()
	return Generate(f, meta, files)
}

// Generate renders the consolidated document
func Generate(w io.Writer, meta Metadata, files []models.DecodedFile) (Stats, error) {
	var b strings.Builder

	b.WriteString("# Proyecto Java Consolidado\n\n")
	fmt.Fprintf(&b, "**Generado:** %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	if meta.SubmissionID != "" {
		fmt.Fprintf(&b, "**Alumno:** %s\n\n", meta.SubmissionID)
	}
	fmt.Fprintf(&b, "**Proyecto:** %s\n\n", meta.ProjectName)
	fmt.Fprintf(&b, "**Modo de conversión:** %s\n\n", meta.ModeName)

	b.WriteString("## 📋 Metadata del Proyecto\n\n")
	fmt.Fprintf(&b, "- **Tipo de proyecto:** %s\n", meta.ProjectType)
	fmt.Fprintf(&b, "- **Total de archivos:** %d\n", len(files))

	b.WriteString("\n## 📁 Estructura de Directorios\n\n```\n")
	writeTree(&b, files)
	b.WriteString("```\n\n")

	b.WriteString("## 📄 Contenido de Archivos\n\n---\n\n")

	stats := Stats{TotalFiles: len(files)}
	for _, file := range files {
		lines := fingerprint.CountLines(file.Content)
		stats.TotalLines += lines
		if file.Extension == ".java" {
			stats.JavaFiles++
		}

		lang, ok := fenceLangs[file.Extension]
		if !ok {
			lang = "text"
		}

		fmt.Fprintf(&b, "### 📄 `%s`\n\n", file.RelativePath)
		fmt.Fprintf(&b, "**Líneas:** %d | **Tipo:** %s\n\n", lines, file.Extension)
		fmt.Fprintf(&b, "```%s\n", lang)
		b.WriteString(file.Content)
		if !strings.HasSuffix(file.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n\n---\n\n")
	}
	stats.ConfigFiles = stats.TotalFiles - stats.JavaFiles

	b.WriteString("## 📊 Estadísticas del Proyecto\n\n")
	fmt.Fprintf(&b, "- **Total de archivos procesados:** %d\n", stats.TotalFiles)
	fmt.Fprintf(&b, "- **Total de líneas de código:** %d\n", stats.TotalLines)
	fmt.Fprintf(&b, "- **Archivos Java:** %d\n", stats.JavaFiles)
	fmt.Fprintf(&b, "- **Otros archivos:** %d\n", stats.ConfigFiles)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return Stats{}, fmt.Errorf("failed to write consolidated document: %w", err)
	}
	return stats, nil
}

// writeTree renders every path prefix as an indented tree, capped at
// treeLimit entries
func writeTree(b *strings.Builder, files []models.DecodedFile) {
	prefixes := make(map[string]bool)
	isFile := make(map[string]bool)
	for _, file := range files {
		parts := strings.Split(file.RelativePath, "/")
		for i := range parts {
			prefixes[path.Join(parts[:i+1]...)] = true
		}
		isFile[file.RelativePath] = true
	}

	sorted := make([]string, 0, len(prefixes))
	for p := range prefixes {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	shown := sorted
	if len(shown) > treeLimit {
		shown = shown[:treeLimit]
	}
	for _, p := range shown {
		level := strings.Count(p, "/")
		prefix := "📁 "
		if isFile[p] {
			prefix = "📄 "
		}
		fmt.Fprintf(b, "%s%s%s\n", strings.Repeat("  ", level), prefix, path.Base(p))
	}
	if len(sorted) > treeLimit {
		fmt.Fprintf(b, "\n... y %d elementos más\n", len(sorted)-treeLimit)
	}
}
