package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

type PDFConverterI interface {
	Convert(pages ...[]byte) ([]byte, error)
}

// WkhtmltopdfConverter prints HTML pages with the wkhtmltopdf binary, which
// must be on PATH or at WKHTMLTOPDF_PATH.
type WkhtmltopdfConverter struct {
	DPI uint
	// JavascriptDelay is how long, in milliseconds, chart scripts get to draw
	// before a page is printed.
	JavascriptDelay uint
}

func NewWkhtmltopdfConverter() *WkhtmltopdfConverter {
	return &WkhtmltopdfConverter{DPI: 300, JavascriptDelay: 1500}
}

// Convert renders each page in order into one A4 portrait document.
func (c *WkhtmltopdfConverter) Convert(pages ...[]byte) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to convert")
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	// only one page can be streamed through stdin, so every page goes
	// through a file
	dir, err := os.MkdirTemp("", "portfolio-report-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	for i, html := range pages {
		path := filepath.Join(dir, fmt.Sprintf("page-%d.html", i))
		if err := os.WriteFile(path, html, 0o600); err != nil {
			return nil, err
		}
		page := wkhtmltopdf.NewPage(path)
		page.JavascriptDelay.Set(c.JavascriptDelay)
		pdfg.AddPage(page)
	}

	pdfg.Dpi.Set(c.DPI)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}
