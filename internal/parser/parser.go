package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
)

// pdfSignature is the magic prefix of a well-formed PDF file.
var pdfSignature = []byte("%PDF-")

// PDFLoader extracts page texts from PDF files. It rejects anything that is
// not a PDF, and anything larger than maxBytes, before touching the content.
type PDFLoader struct {
	maxBytes int64
}

func NewPDFLoader(maxFileMB int) *PDFLoader {
	if maxFileMB <= 0 {
		maxFileMB = 10
	}
	return &PDFLoader{maxBytes: int64(maxFileMB) * 1024 * 1024}
}

// Load validates the file and returns its pages in order. Pages with no
// extractable text are kept (empty Text) so page numbering stays faithful
// to the source document.
func (p *PDFLoader) Load(filePath string) ([]models.Page, error) {
	if err := p.validate(filePath); err != nil {
		return nil, err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable PDF: %v", models.ErrInvalidInput, err)
	}

	numPages := reader.NumPage()
	pages := make([]models.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, models.Page{Number: i})
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Msg("Skipping unreadable page")
			pages = append(pages, models.Page{Number: i})
			continue
		}
		pages = append(pages, models.Page{Number: i, Text: strings.TrimSpace(pageText)})
	}

	log.Debug().Str("file", filePath).Int("pages", len(pages)).Msg("Extracted PDF pages")
	return pages, nil
}

func (p *PDFLoader) validate(filePath string) error {
	if strings.ToLower(filepath.Ext(filePath)) != ".pdf" {
		return fmt.Errorf("%w: %s is not a PDF file", models.ErrInvalidInput, filepath.Base(filePath))
	}

	stat, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	if stat.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", models.ErrInvalidInput, filepath.Base(filePath))
	}
	if stat.Size() > p.maxBytes {
		return fmt.Errorf("%w: %s exceeds the %d MB size limit", models.ErrInvalidInput, filepath.Base(filePath), p.maxBytes/(1024*1024))
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	defer f.Close()

	sig := make([]byte, len(pdfSignature))
	if _, err := f.Read(sig); err != nil || !bytes.Equal(sig, pdfSignature) {
		return fmt.Errorf("%w: %s does not have a PDF signature", models.ErrInvalidInput, filepath.Base(filePath))
	}
	return nil
}
