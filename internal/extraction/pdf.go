package extraction

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// FitzPages reads page text from PDF bytes with go-fitz.
func FitzPages(data []byte) ([]string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for n := range doc.NumPage() {
		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", n+1, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}
