package policy

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

const (
	JPG  models.Format = "jpg"
	PNG  models.Format = "png"
	GIF  models.Format = "gif"
	SVG  models.Format = "svg"
	PDF  models.Format = "pdf"
	DOCX models.Format = "docx"
	PPTX models.Format = "pptx"
	TXT  models.Format = "txt"
)

// MaxUploadBytes is the largest payload the service accepts.
const MaxUploadBytes int64 = 50 * 1024 * 1024

var conversionMatrix = map[models.Format][]models.Format{
	JPG:  {PNG, GIF},
	PNG:  {JPG, GIF},
	GIF:  {JPG, PNG},
	SVG:  {PNG, JPG, GIF, PDF},
	PDF:  {JPG, PNG, GIF, DOCX},
	DOCX: {PDF, TXT},
	PPTX: {PDF},
	TXT:  {DOCX, PDF},
}

var minTargetBytes = map[models.Format]int64{
	JPG: 1024,
	PNG: 1024,
	PDF: 10240,
}

var mimeTypes = map[models.Format]string{
	JPG:  "image/jpeg",
	PNG:  "image/png",
	GIF:  "image/gif",
	SVG:  "image/svg+xml",
	PDF:  "application/pdf",
	DOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	PPTX: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	TXT:  "text/plain",
}

// Formats lists every known format in a stable order.
func Formats() []models.Format {
	return []models.Format{JPG, PNG, GIF, SVG, PDF, DOCX, PPTX, TXT}
}

// ParseFormat normalizes a user-supplied format name ("JPEG" -> jpg).
func ParseFormat(s string) (models.Format, bool) {
	f := models.Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if f == "jpeg" {
		f = JPG
	}
	_, ok := conversionMatrix[f]
	return f, ok
}

// DetectFormat derives the format from a file name's extension.
func DetectFormat(filename string) (models.Format, bool) {
	ext := filepath.Ext(filename)
	if ext == "" {
		return "", false
	}
	return ParseFormat(ext)
}

// TargetFormats returns the formats src can be converted to.
func TargetFormats(src models.Format) []models.Format {
	return slices.Clone(conversionMatrix[src])
}

// DefaultTarget returns the only target of src, if there is exactly one.
func DefaultTarget(src models.Format) (models.Format, bool) {
	targets := conversionMatrix[src]
	if len(targets) != 1 {
		return "", false
	}
	return targets[0], true
}

// CanConvert reports whether the matrix allows src -> dst.
func CanConvert(src, dst models.Format) bool {
	return slices.Contains(conversionMatrix[src], dst)
}

// Compressible lists the formats accepted by the compression endpoint.
func Compressible() []models.Format {
	return []models.Format{JPG, PNG, PDF}
}

// IsCompressible reports whether f can be compressed.
func IsCompressible(f models.Format) bool {
	_, ok := minTargetBytes[f]
	return ok
}

// MinTargetBytes is the smallest target size accepted for f, or 0 if f is
// not compressible.
func MinTargetBytes(f models.Format) int64 {
	return minTargetBytes[f]
}

// DefaultTargetSize proposes half of the source size.
func DefaultTargetSize(sourceSize int64) int64 {
	return (sourceSize + 1) / 2
}

// IsPDFToImage reports whether a page selection applies to src -> dst.
func IsPDFToImage(src, dst models.Format) bool {
	return src == PDF && (dst == JPG || dst == PNG || dst == GIF)
}

// Extension returns the file extension (with dot) used for f.
func Extension(f models.Format) string {
	return "." + string(f)
}
