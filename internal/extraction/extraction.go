// Package extraction turns an uploaded report into plain text. PDFs are read
// page by page with MuPDF; images are transcribed by the vision model.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/labsight/labsight/internal/inference"
	"github.com/labsight/labsight/internal/prompts"
)

// Errors returned by Extract.
var (
	ErrEmptyText        = errors.New("no text could be extracted from the report")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrUnreadable       = errors.New("report could not be read")
)

// MediaType is the coarse kind of an uploaded report.
type MediaType string

const (
	MediaPDF   MediaType = "pdf"
	MediaImage MediaType = "image"
)

// Source records which path produced the text.
type Source string

const (
	SourcePDF    Source = "pdf"
	SourceVision Source = "vision"
)

// Document is a validated upload ready for extraction. PageCount is the
// structural page count of a PDF, or zero when unknown.
type Document struct {
	Filename    string
	MediaType   MediaType
	ContentType string
	Data        []byte
	PageCount   int
}

// Text is the extracted report text. Text is never blank.
type Text struct {
	Text   string `json:"text"`
	Pages  int    `json:"pages"`
	Source Source `json:"source"`
}

// Extractor converts a document into text.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (*Text, error)
}

// PageReader returns the text of each page of a PDF, in page order.
type PageReader func(data []byte) ([]string, error)

type extractor struct {
	vision inference.Client
	pages  PageReader
	logger *slog.Logger
}

// New creates an Extractor that reads PDFs with go-fitz and sends images to vision.
func New(vision inference.Client, logger *slog.Logger) Extractor {
	return NewWithReader(vision, FitzPages, logger)
}

// NewWithReader creates an Extractor with a custom PDF page reader.
func NewWithReader(vision inference.Client, pages PageReader, logger *slog.Logger) Extractor {
	return &extractor{
		vision: vision,
		pages:  pages,
		logger: logger.With("system", "extraction"),
	}
}

func (e *extractor) Extract(ctx context.Context, doc Document) (*Text, error) {
	var (
		text *Text
		err  error
	)

	switch doc.MediaType {
	case MediaPDF:
		text, err = e.extractPDF(doc)
	case MediaImage:
		text, err = e.extractImage(ctx, doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, doc.MediaType)
	}

	if err != nil {
		return nil, err
	}

	e.logger.InfoContext(
		ctx, "text extracted",
		"filename", doc.Filename,
		"source", text.Source,
		"pages", text.Pages,
		"chars", len(text.Text),
	)

	return text, nil
}

func (e *extractor) extractPDF(doc Document) (*Text, error) {
	pages, err := e.pages(doc.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s has %d pages without text", ErrEmptyText, doc.Filename, len(pages))
	}

	return &Text{Text: text, Pages: len(pages), Source: SourcePDF}, nil
}

func (e *extractor) extractImage(ctx context.Context, doc Document) (*Text, error) {
	dataURI, err := encodeImage(doc.Data, doc.ContentType)
	if err != nil {
		return nil, err
	}

	prompt, err := transcribePrompt()
	if err != nil {
		return nil, err
	}

	content, err := e.vision.Vision(ctx, prompt, dataURI)
	if err != nil {
		if errors.Is(err, inference.ErrEmptyResponse) {
			return nil, fmt.Errorf("%w: %w", ErrEmptyText, err)
		}
		return nil, fmt.Errorf("transcribe %s: %w", doc.Filename, err)
	}

	return &Text{Text: content, Pages: 1, Source: SourceVision}, nil
}

func transcribePrompt() (string, error) {
	instructions, err := prompts.Instructions(prompts.StageTranscribe)
	if err != nil {
		return "", err
	}

	spec, err := prompts.Spec(prompts.StageTranscribe)
	if err != nil {
		return "", err
	}

	return instructions + "\n\n" + spec, nil
}
