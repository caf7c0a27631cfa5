package analyses_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/labsight/labsight/internal/analyses"
	"github.com/labsight/labsight/internal/extraction"
	"github.com/labsight/labsight/internal/inference"
	"github.com/labsight/labsight/internal/inference/inferencetest"
	"github.com/labsight/labsight/pkg/handlers"
	"github.com/labsight/labsight/pkg/middleware"
	"github.com/labsight/labsight/workflow"
)

const maxSize = 1 << 20

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// minimalPDF builds a one-page PDF with a correct cross-reference table.
func minimalPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestNewReport(t *testing.T) {
	pdf := minimalPDF("Hemoglobin 13.5 g/dL 12-16")

	tests := []struct {
		name      string
		filename  string
		data      []byte
		wantErr   error
		wantMedia extraction.MediaType
		wantType  string
	}{
		{"pdf", "report.pdf", pdf, nil, extraction.MediaPDF, "application/pdf"},
		{"png", "scan.png", pngBytes(t), nil, extraction.MediaImage, "image/png"},
		{"jpeg upper extension", "PHOTO.JPG", jpegBytes(t), nil, extraction.MediaImage, "image/jpeg"},
		{"jpeg long extension", "photo.jpeg", jpegBytes(t), nil, extraction.MediaImage, "image/jpeg"},
		{"text file", "notes.txt", []byte("Hemoglobin 13.5"), analyses.ErrUnsupportedType, "", ""},
		{"no extension", "report", pdf, analyses.ErrUnsupportedType, "", ""},
		{"content mismatch", "scan.png", pdf, analyses.ErrUnsupportedType, "", ""},
		{"empty pdf", "report.pdf", nil, analyses.ErrEmptyFile, "", ""},
		{"unsupported before empty", "report.docx", nil, analyses.ErrUnsupportedType, "", ""},
		{"too large", "report.pdf", make([]byte, maxSize+1), analyses.ErrFileTooLarge, "", ""},
		{"broken pdf", "report.pdf", []byte("%PDF-1.4\nnot really a pdf"), analyses.ErrInvalidFile, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := analyses.NewReport(tt.filename, tt.data, maxSize)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report.MediaType != tt.wantMedia || report.ContentType != tt.wantType {
				t.Errorf("got media %s type %s", report.MediaType, report.ContentType)
			}
		})
	}
}

func TestNewReportPageCount(t *testing.T) {
	report, err := analyses.NewReport("report.pdf", minimalPDF("WBC 6.1"), maxSize)
	if err != nil {
		t.Fatalf("new report: %v", err)
	}
	if report.PageCount != 1 {
		t.Errorf("page count: got %d, want 1", report.PageCount)
	}

	doc := report.Document()
	if doc.Filename != "report.pdf" || doc.MediaType != extraction.MediaPDF || len(doc.Data) == 0 {
		t.Errorf("document: got %+v", doc)
	}
	if doc.PageCount != 1 {
		t.Errorf("document page count: got %d, want 1", doc.PageCount)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported", analyses.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{"too large", analyses.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"empty file", analyses.ErrEmptyFile, http.StatusBadRequest},
		{"invalid", fmt.Errorf("wrap: %w", analyses.ErrInvalidFile), http.StatusBadRequest},
		{"empty text", fmt.Errorf("%w: %w", workflow.ErrExtractFailed, extraction.ErrEmptyText), http.StatusUnprocessableEntity},
		{"unreadable", extraction.ErrUnreadable, http.StatusBadRequest},
		{"inference", inference.ErrInference, http.StatusBadGateway},
		{"stage failed", fmt.Errorf("%w: summarize: %w", workflow.ErrStageFailed, inference.ErrInference), http.StatusBadGateway},
		{"canceled", context.Canceled, http.StatusServiceUnavailable},
		{"deadline during stage", fmt.Errorf("%w: summarize: %w", workflow.ErrStageFailed, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analyses.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

type mockExtractor struct {
	text    *extraction.Text
	err     error
	calls   int
	block   chan struct{}
	started chan struct{}
}

func (m *mockExtractor) Extract(ctx context.Context, _ extraction.Document) (*extraction.Text, error) {
	m.calls++
	if m.started != nil {
		close(m.started)
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.text, m.err
}

func newSystem(ex extraction.Extractor, client inference.Client, maxConcurrent int) analyses.System {
	rt := &workflow.Runtime{Extractor: ex, Text: client, Logger: discardLogger()}
	return analyses.New(rt, maxConcurrent, discardLogger())
}

func textExtractor() *mockExtractor {
	return &mockExtractor{text: &extraction.Text{
		Text:   "Hemoglobin 11.2 g/dL 12 - 16",
		Pages:  1,
		Source: extraction.SourceVision,
	}}
}

func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/analyses", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(sys analyses.System, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	group := sys.Handler(maxSize).Routes()
	for _, r := range group.Routes {
		mux.HandleFunc(r.Method+" "+group.Prefix+r.Pattern, r.Handler)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerAnalyze(t *testing.T) {
	client := inferencetest.NewClient("findings", "concerns", "recommendations", "resources")
	sys := newSystem(textExtractor(), client, 1)

	rec := serve(sys, uploadRequest(t, analyses.FormField, "scan.png", pngBytes(t)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result workflow.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if result.Filename != "scan.png" || result.MediaType != extraction.MediaImage {
		t.Errorf("document: got %s %s", result.Filename, result.MediaType)
	}
	if len(result.Stages) != 4 || result.Stages[3].Output != "resources" {
		t.Errorf("stages: got %+v", result.Stages)
	}
	if len(result.LabReport.Tests) != 1 {
		t.Errorf("lab tests: got %+v", result.LabReport.Tests)
	}
}

func TestHandlerAnalyzeRejections(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		data     []byte
		want     int
	}{
		{"unsupported type", analyses.FormField, "report.txt", []byte("Hemoglobin 13"), http.StatusUnsupportedMediaType},
		{"empty file", analyses.FormField, "report.pdf", nil, http.StatusBadRequest},
		{"missing field", "attachment", "report.pdf", []byte("%PDF-1.4"), http.StatusBadRequest},
		{"too large", analyses.FormField, "report.pdf", make([]byte, maxSize+10), http.StatusRequestEntityTooLarge},
		{"too large and unsupported", analyses.FormField, "report.txt", make([]byte, maxSize+10), http.StatusUnsupportedMediaType},
		{"body beyond multipart limit", analyses.FormField, "report.pdf", make([]byte, 3*maxSize), http.StatusRequestEntityTooLarge},
		{"body beyond multipart limit and unsupported", analyses.FormField, "report.txt", make([]byte, 3*maxSize), http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := textExtractor()
			client := inferencetest.NewClient("a", "b", "c", "d")

			rec := serve(newSystem(ex, client, 1), uploadRequest(t, tt.field, tt.filename, tt.data))

			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}

			var body handlers.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Error == "" {
				t.Errorf("error body: %+v, %v", body, err)
			}

			if ex.calls != 0 || len(client.Calls()) != 0 {
				t.Errorf("rejected upload reached extraction: extract=%d agent=%d", ex.calls, len(client.Calls()))
			}
		})
	}
}

func TestHandlerAnalyzeInferenceFailure(t *testing.T) {
	client := inferencetest.Failing(0, errors.New("dial tcp: connection refused"))
	sys := newSystem(textExtractor(), client, 1)

	rec := serve(sys, uploadRequest(t, analyses.FormField, "scan.png", pngBytes(t)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "agent stage failed") {
		t.Errorf("body: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "stages") {
		t.Errorf("partial output leaked: %s", rec.Body.String())
	}
}

func TestHandlerAnalyzeFailureLoggedOnce(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	client := inferencetest.Failing(0, errors.New("dial tcp: connection refused"))
	rt := &workflow.Runtime{Extractor: textExtractor(), Text: client, Logger: logger}
	sys := analyses.New(rt, 1, logger)

	mux := http.NewServeMux()
	group := sys.Handler(maxSize).Routes()
	for _, r := range group.Routes {
		mux.HandleFunc(r.Method+" "+group.Prefix+r.Pattern, r.Handler)
	}
	handler := middleware.Logger(discardLogger())(mux)

	req := uploadRequest(t, analyses.FormField, "scan.png", pngBytes(t))
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", rec.Code)
	}

	var errorLines []string
	for line := range strings.Lines(logs.String()) {
		if strings.Contains(line, "level=ERROR") {
			errorLines = append(errorLines, line)
		}
	}

	if len(errorLines) != 1 {
		t.Fatalf("error log lines: got %d, want 1:\n%s", len(errorLines), logs.String())
	}
	if !strings.Contains(errorLines[0], "analysis_id=") {
		t.Errorf("failure log missing analysis_id: %s", errorLines[0])
	}
	if !strings.Contains(errorLines[0], "request_id=req-123") {
		t.Errorf("failure log missing request_id: %s", errorLines[0])
	}
}

func TestFailureAttrs(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/analyses", nil)

	attrs := analyses.FailureAttrs(req, &workflow.AnalysisError{ID: id, Err: workflow.ErrStageFailed})
	if len(attrs) != 4 || attrs[2] != "analysis_id" || attrs[3] != id {
		t.Errorf("workflow failure: got %v", attrs)
	}

	attrs = analyses.FailureAttrs(req, analyses.ErrEmptyFile)
	if len(attrs) != 2 || attrs[0] != "request_id" {
		t.Errorf("upload rejection: got %v", attrs)
	}
}

func TestHandlerAnalyzeEmptyText(t *testing.T) {
	ex := &mockExtractor{err: fmt.Errorf("%w: scan.png", extraction.ErrEmptyText)}
	client := inferencetest.NewClient("a", "b", "c", "d")

	rec := serve(newSystem(ex, client, 1), uploadRequest(t, analyses.FormField, "scan.png", pngBytes(t)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", rec.Code)
	}
	if n := len(client.Calls()); n != 0 {
		t.Errorf("agent calls: got %d, want 0", n)
	}
}

func TestHandlerStages(t *testing.T) {
	sys := newSystem(textExtractor(), inferencetest.NewClient(), 1)

	rec := serve(sys, httptest.NewRequest(http.MethodGet, "/analyses/stages", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var stages []analyses.StageInfo
	if err := json.NewDecoder(rec.Body).Decode(&stages); err != nil {
		t.Fatalf("decode: %v", err)
	}

	titles := []string{"Key Findings", "Health Concerns", "Recommendations", "Trusted Resources"}
	if len(stages) != len(titles) {
		t.Fatalf("stages: got %d", len(stages))
	}
	for i, s := range stages {
		if s.Position != i+1 || s.Title != titles[i] {
			t.Errorf("stage %d: got %+v", i, s)
		}
	}
}

func TestAnalyzeRespectsConcurrencyLimit(t *testing.T) {
	blocking := textExtractor()
	blocking.block = make(chan struct{})
	blocking.started = make(chan struct{})

	client := inferencetest.NewClient("a", "b", "c", "d")
	sys := newSystem(blocking, client, 1)

	report, err := analyses.NewReport("scan.png", pngBytes(t), maxSize)
	if err != nil {
		t.Fatalf("new report: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := sys.Analyze(context.Background(), report)
		done <- err
	}()

	<-blocking.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := sys.Analyze(ctx, report); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second analysis: got %v, want DeadlineExceeded", err)
	}

	close(blocking.block)

	if err := <-done; err != nil {
		t.Errorf("first analysis: %v", err)
	}
}
