package consolidate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvallespi/dupscan/internal/models"
)

func TestGenerate_Document(t *testing.T) {
	meta := Metadata{
		SubmissionID: "Ana García",
		ProjectName:  "tienda",
		ProjectType:  "Maven",
		ModeName:     "Proyecto completo",
	}
	files := []models.DecodedFile{
		{RelativePath: "pom.xml", Content: "<project/>\n", Extension: ".xml"},
		{RelativePath: "src/Main.java", Content: "class Main {\n}\n", Extension: ".java"},
	}

	var sb strings.Builder
	stats, err := Generate(&sb, meta, files)
	require.NoError(t, err)

	out := sb.String()
	assert.Contains(t, out, "# Proyecto Java Consolidado")
	assert.Contains(t, out, "**Alumno:** Ana García")
	assert.Contains(t, out, "**Tipo de proyecto:** Maven")
	assert.Contains(t, out, "### 📄 `src/Main.java`")
	assert.Contains(t, out, "```java\nclass Main {\n}\n```")
	assert.Contains(t, out, "```xml\n<project/>\n```")
	assert.Contains(t, out, "## 📊 Estadísticas del Proyecto")

	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, 1, stats.JavaFiles)
	assert.Equal(t, 1, stats.ConfigFiles)
	// 2 lines for pom.xml (trailing newline counts a final empty line),
	// 3 for Main.java
	assert.Equal(t, 5, stats.TotalLines)
}

func TestGenerate_AppendsMissingNewlineInsideFence(t *testing.T) {
	files := []models.DecodedFile{
		{RelativePath: "A.java", Content: "class A {}", Extension: ".java"},
	}
	var sb strings.Builder
	_, err := Generate(&sb, Metadata{ProjectName: "p"}, files)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "class A {}\n```")
}

func TestGenerate_TreeIsCapped(t *testing.T) {
	files := make([]models.DecodedFile, 0, 80)
	for i := 0; i < 80; i++ {
		files = append(files, models.DecodedFile{
			RelativePath: fmt.Sprintf("src/File%02d.java", i),
			Content:      "class X {}",
			Extension:    ".java",
		})
	}
	var sb strings.Builder
	_, err := Generate(&sb, Metadata{ProjectName: "grande"}, files)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "elementos más")
}

func TestGenerate_UnknownExtensionFallsBackToText(t *testing.T) {
	files := []models.DecodedFile{
		{RelativePath: "notes.cfg", Content: "key=value", Extension: ".cfg"},
	}
	var sb strings.Builder
	_, err := Generate(&sb, Metadata{ProjectName: "p"}, files)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "```text\nkey=value")
}
