package models

import (
	"strconv"
	"time"
)

// HistoryItem is the kind-independent summary shown by the CLI and cached
// locally. Remote rows and locally recorded tasks both map onto it.
type HistoryItem struct {
	ID               string
	Kind             Kind
	OriginalFilename string
	SourceFormat     string
	Target           string
	Status           string
	ErrorMessage     string
	SizeBytes        int64
	ResultSizeBytes  int64
	CreatedAt        string
}

// LocalRecord is a task started from this machine, kept in the local store.
type LocalRecord struct {
	ID          string
	Kind        Kind
	TaskID      string
	Filename    string
	Fingerprint string
	Target      string
	Phase       Phase
	Failure     string
	FinishedAt  time.Time
}

// FromConversion maps a remote conversion row.
func FromConversion(r ConversionResult) HistoryItem {
	item := HistoryItem{
		ID:               r.ID,
		Kind:             KindConversion,
		OriginalFilename: r.OriginalFilename,
		SourceFormat:     r.SourceFormat,
		Target:           r.TargetFormat,
		Status:           r.Status,
	}
	if r.ErrorMessage != nil {
		item.ErrorMessage = *r.ErrorMessage
	}
	if r.FileSizeBytes != nil {
		item.SizeBytes = *r.FileSizeBytes
	}
	if r.CreatedAt != nil {
		item.CreatedAt = *r.CreatedAt
	}
	return item
}

// FromCompression maps a remote compression row. Target carries the
// requested size in bytes as text.
func FromCompression(r CompressionResult) HistoryItem {
	item := HistoryItem{
		ID:               r.ID,
		Kind:             KindCompression,
		OriginalFilename: r.OriginalFilename,
		SourceFormat:     r.SourceFormat,
		Target:           strconv.FormatInt(r.TargetSizeBytes, 10),
		Status:           r.Status,
		SizeBytes:        r.OriginalSizeBytes,
	}
	if r.CompressedSizeBytes != nil {
		item.ResultSizeBytes = *r.CompressedSizeBytes
	}
	if r.ErrorMessage != nil {
		item.ErrorMessage = *r.ErrorMessage
	}
	if r.CreatedAt != nil {
		item.CreatedAt = *r.CreatedAt
	}
	return item
}
