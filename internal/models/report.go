package models

import (
	"time"
)

// Report is the similarity report written to reporte_similitud.json. Field
// names are consumed by downstream tooling (PDF rendering among others) and
// are part of the wire contract.
type Report struct {
	Generated      time.Time        `json:"generado"`
	TotalProjects  int              `json:"total_proyectos_analizados"`
	TotalIdentical int              `json:"total_grupos_identicos"`
	TotalPartial   int              `json:"total_copias_parciales"`
	Identical      []IdenticalGroup `json:"proyectos_identicos"`
	Partial        []PartialCopy    `json:"copias_parciales"`
	TopFiles       []TopFile        `json:"archivos_mas_copiados"`
}

// IdenticalGroup is a set of submissions whose full normalized file sets hash
// equal. Always size >= 2.
type IdenticalGroup struct {
	ProjectHash string   `json:"hash_proyecto"`
	Members     []string `json:"alumnos"`
	Percentage  int      `json:"porcentaje_similitud"`
	FileCount   int      `json:"archivos_identicos"`
	TotalLines  int      `json:"total_lineas"`
}

// PartialCopy is an unordered pair of non-identical submissions sharing at
// least the minimum number of file digests.
type PartialCopy struct {
	Members     []string     `json:"alumnos"`
	SharedFiles []CopiedFile `json:"archivos_copiados"`
	Percentage  float64      `json:"porcentaje_similitud"`
	SharedCount int          `json:"total_archivos_comunes"`
}

// CopiedFile names one shared digest inside a PartialCopy
type CopiedFile struct {
	Name   string `json:"nombre"`
	Digest string `json:"hash"`
}

// TopFile is a file digest appearing in two or more submissions
type TopFile struct {
	Name        string   `json:"archivo"`
	Digest      string   `json:"hash"`
	Submissions []string `json:"aparece_en"`
	Occurrences int      `json:"total_copias"`
}
