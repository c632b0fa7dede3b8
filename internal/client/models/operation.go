package models

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Kind selects the remote operation.
type Kind string

const (
	KindConversion  Kind = "conversion"
	KindCompression Kind = "compression"
)

// Format is a lower-case file format name as used by the API ("jpg", "pdf").
type Format string

// Payload is an immutable reference to the binary content of a submission.
// It can be opened more than once (sniffing, fingerprinting, upload).
type Payload struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// PayloadFromBytes wraps in-memory content.
func PayloadFromBytes(name string, b []byte) Payload {
	data := bytes.Clone(b)
	return Payload{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// PayloadFromFile references a file on disk. The size is taken at call time.
func PayloadFromFile(path string) (Payload, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Payload{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return Payload{}, fmt.Errorf("%s is a directory", path)
	}
	return Payload{
		Name: filepath.Base(path),
		Size: fi.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// IsZero reports whether p references no content at all.
func (p Payload) IsZero() bool {
	return p.open == nil
}

// Open returns a fresh reader over the content.
func (p Payload) Open() (io.ReadCloser, error) {
	if p.open == nil {
		return nil, fmt.Errorf("empty payload")
	}
	return p.open()
}

// Head returns up to n leading bytes of the content.
func (p Payload) Head(n int) ([]byte, error) {
	rc, err := p.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(rc, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}

// Operation is what a caller submits: the payload plus the parameters of
// one conversion or one compression.
//
// SelectedPages distinguishes nil (all pages) from an empty, non-nil slice
// (no pages selected, which is invalid).
type Operation struct {
	Kind    Kind
	Payload Payload

	TargetFormat  Format
	SelectedPages []int

	TargetSizeBytes int64
}

// Convert builds a conversion operation.
func Convert(p Payload, target Format, pages []int) Operation {
	return Operation{Kind: KindConversion, Payload: p, TargetFormat: target, SelectedPages: pages}
}

// Compress builds a compression operation.
func Compress(p Payload, targetSizeBytes int64) Operation {
	return Operation{Kind: KindCompression, Payload: p, TargetSizeBytes: targetSizeBytes}
}
