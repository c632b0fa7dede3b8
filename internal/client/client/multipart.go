package client

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"

	"github.com/dmitrijs2005/fileconv/internal/client/models"
)

type formField struct {
	name, value string
}

// multipartBody streams form fields, the payload and the closing boundary
// without buffering the payload, so the exact length is known up front.
type multipartBody struct {
	io.Reader
	file        io.ReadCloser
	contentType string
	length      int64
}

func newMultipartBody(p models.Payload, fields []formField, onProgress func(int)) (*multipartBody, error) {
	var head bytes.Buffer
	w := multipart.NewWriter(&head)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, p.Name))
	h.Set("Content-Type", contentTypeOf(p.Name))
	if _, err := w.CreatePart(h); err != nil {
		return nil, err
	}
	headLen := head.Len()

	if err := w.Close(); err != nil {
		return nil, err
	}
	tail := bytes.Clone(head.Bytes()[headLen:])
	head.Truncate(headLen)

	file, err := p.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.Name, err)
	}

	length := int64(head.Len()) + p.Size + int64(len(tail))
	r := io.MultiReader(&head, file, bytes.NewReader(tail))

	return &multipartBody{
		Reader:      newProgressReader(r, length, onProgress),
		file:        file,
		contentType: w.FormDataContentType(),
		length:      length,
	}, nil
}

func (b *multipartBody) Close() error        { return b.file.Close() }
func (b *multipartBody) Len() int64          { return b.length }
func (b *multipartBody) ContentType() string { return b.contentType }

func contentTypeOf(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// progressReader reports rounded percentages of total, only when they grow.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	last       int
	onProgress func(int)
}

func newProgressReader(r io.Reader, total int64, onProgress func(int)) io.Reader {
	if onProgress == nil || total <= 0 {
		return r
	}
	return &progressReader{r: r, total: total, last: -1, onProgress: onProgress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		pct := int(math.Round(float64(p.read) * 100 / float64(p.total)))
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.onProgress(pct)
		}
	}
	return n, err
}
