package analyses

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/labsight/labsight/internal/extraction"
)

// FormField is the multipart field that carries the report file.
const FormField = "file"

// multipartOverhead is allowed on top of the file size for form boundaries and headers.
const multipartOverhead = 1 << 20

var extensions = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

var mediaTypes = map[string]extraction.MediaType{
	"application/pdf": extraction.MediaPDF,
	"image/png":       extraction.MediaImage,
	"image/jpeg":      extraction.MediaImage,
}

// Report is a validated upload. It lives only for the request that carried it.
type Report struct {
	Filename    string               `json:"filename"`
	MediaType   extraction.MediaType `json:"media_type"`
	ContentType string               `json:"content_type"`
	Data        []byte               `json:"-"`
	PageCount   int                  `json:"page_count,omitempty"`
}

// Document returns the extraction input for the report.
func (r *Report) Document() extraction.Document {
	return extraction.Document{
		Filename:    r.Filename,
		MediaType:   r.MediaType,
		ContentType: r.ContentType,
		Data:        r.Data,
		PageCount:   r.PageCount,
	}
}

// NewReport validates an uploaded file. The extension must be .pdf, .png, .jpg
// or .jpeg and the sniffed content type must match it. PDFs must parse with pdfcpu.
func NewReport(filename string, data []byte, maxSize int64) (*Report, error) {
	expected, err := expectedContentType(filename)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, filename)
	}

	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %s", ErrFileTooLarge, filename)
	}

	contentType := http.DetectContentType(data)
	if contentType != expected {
		return nil, fmt.Errorf("%w: %s content is %s", ErrUnsupportedType, filename, contentType)
	}

	report := &Report{
		Filename:    filename,
		MediaType:   mediaTypes[contentType],
		ContentType: contentType,
		Data:        data,
	}

	if report.MediaType == extraction.MediaPDF {
		count, err := api.PageCount(bytes.NewReader(data), nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a readable PDF: %w", ErrInvalidFile, filename, err)
		}
		report.PageCount = count
	}

	return report, nil
}

// ReadUpload streams the report file from a multipart request. The file name
// is checked before any of its content is read, so an unsupported type is
// reported ahead of its size.
func ReadUpload(w http.ResponseWriter, r *http.Request, maxSize int64) (*Report, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	part, err := filePart(r)
	if err != nil {
		return nil, err
	}
	defer part.Close()

	filename := part.FileName()
	if _, err := expectedContentType(filename); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(part, maxSize+1))
	if err != nil {
		return nil, uploadError(err)
	}

	return NewReport(filename, data, maxSize)
}

func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing %q form field", ErrInvalidFile, FormField)
		}
		if err != nil {
			return nil, uploadError(err)
		}
		if part.FormName() == FormField {
			return part, nil
		}
		part.Close()
	}
}

func expectedContentType(filename string) (string, error) {
	expected, ok := extensions[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filename)
	}
	return expected, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrFileTooLarge
	}
	return fmt.Errorf("%w: %w", ErrInvalidFile, err)
}
