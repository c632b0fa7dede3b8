package policy

import (
	"fmt"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
	"github.com/dmitrijs2005/fileconv/internal/common"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// sniffBytes is how much of the payload is inspected for its content type.
const sniffBytes = 3072

// ValidationError is a local rejection of an operation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidation
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks op against every static rule and returns the detected
// source format. It reads at most a few KiB of the payload and performs no
// network calls.
func Validate(op models.Operation) (models.Format, error) {
	if op.Payload.IsZero() {
		return "", invalid("no file selected")
	}
	if op.Payload.Size <= 0 {
		return "", invalid("file %q is empty", op.Payload.Name)
	}
	if op.Payload.Size > MaxUploadBytes {
		return "", invalid("file too large: %s exceeds the %s limit",
			humanize.IBytes(uint64(op.Payload.Size)), humanize.IBytes(uint64(MaxUploadBytes)))
	}

	src, ok := DetectFormat(op.Payload.Name)
	if !ok {
		return "", invalid("unsupported file type: %q", op.Payload.Name)
	}

	switch op.Kind {
	case models.KindConversion:
		if err := validateConversion(src, op); err != nil {
			return "", err
		}
	case models.KindCompression:
		if err := validateCompression(src, op); err != nil {
			return "", err
		}
	default:
		return "", invalid("unknown operation %q", op.Kind)
	}

	if err := checkContent(src, op.Payload); err != nil {
		return "", err
	}
	return src, nil
}

func validateConversion(src models.Format, op models.Operation) error {
	if op.TargetFormat == "" {
		return invalid("no target format selected")
	}
	if !CanConvert(src, op.TargetFormat) {
		return invalid("cannot convert %s to %s; supported targets: %v", src, op.TargetFormat, TargetFormats(src))
	}
	if op.SelectedPages == nil {
		return nil
	}
	if !IsPDFToImage(src, op.TargetFormat) {
		return invalid("page selection applies only to PDF to image conversions")
	}
	return validatePages(op.SelectedPages)
}

func validatePages(pages []int) error {
	if len(pages) == 0 {
		return invalid("no pages selected")
	}
	seen := make(map[int]struct{}, len(pages))
	for _, p := range pages {
		if p < 1 {
			return invalid("invalid page number %d", p)
		}
		if _, dup := seen[p]; dup {
			return invalid("page %d selected twice", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

func validateCompression(src models.Format, op models.Operation) error {
	if !IsCompressible(src) {
		return invalid("%s files cannot be compressed; supported: %v", src, Compressible())
	}
	target := op.TargetSizeBytes
	if target <= 0 {
		return invalid("target size must be positive")
	}
	if minimum := MinTargetBytes(src); target < minimum {
		return invalid("target size %s is below the %s minimum for %s",
			humanize.IBytes(uint64(target)), humanize.IBytes(uint64(minimum)), src)
	}
	if target >= op.Payload.Size {
		return invalid("target size %s must be smaller than the file (%s)",
			humanize.IBytes(uint64(target)), humanize.IBytes(uint64(op.Payload.Size)))
	}
	return nil
}

// checkContent sniffs the leading bytes and rejects a payload whose content
// is recognized as a different known format than its extension says.
// Unrecognized content (zip containers, octet-stream) defers to the extension.
func checkContent(ext models.Format, p models.Payload) error {
	head, err := p.Head(sniffBytes)
	if err != nil {
		return invalid("cannot read %q: %v", p.Name, err)
	}

	detected := mimetype.Detect(head)
	for _, f := range Formats() {
		if detected.Is(mimeTypes[f]) {
			if f != ext {
				return invalid("content of %q looks like %s, not %s", p.Name, f, ext)
			}
			return nil
		}
	}
	return nil
}
