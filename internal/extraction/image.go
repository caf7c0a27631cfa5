package extraction

import (
	"fmt"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
)

var imageFormats = map[string]document.ImageFormat{
	"image/png":  document.PNG,
	"image/jpeg": document.JPEG,
}

// encodeImage wraps the uploaded bytes, unchanged, in a data URI for the vision model.
func encodeImage(data []byte, contentType string) (string, error) {
	format, ok := imageFormats[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}

	dataURI, err := encoding.EncodeImageDataURI(data, format)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	return dataURI, nil
}
