package workflow

import (
	"log/slog"

	"github.com/labsight/labsight/internal/extraction"
	"github.com/labsight/labsight/internal/inference"
)

// Runtime bundles the dependencies that workflow nodes require.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Extractor extraction.Extractor
	Text      inference.Client
	Logger    *slog.Logger
}
