package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtractionFailed is returned when a PDF cannot be parsed or holds no text.
var ErrExtractionFailed = errors.New("text extraction failed")

type parseFunc func(ctx context.Context, path string) (string, error)

// PDFExtractor turns an uploaded PDF into plain text. The source file is
// always removed once Extract returns.
type PDFExtractor struct {
	parse  parseFunc
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{parse: parsePDF, logger: logger}
}

// Extract reads the text of the PDF at path and deletes the file.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("remove uploaded file failed", "path", path, "error", err)
		}
	}()

	text, err := e.parse(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	text = normalizeText(text)
	if text == "" {
		return "", fmt.Errorf("%w: no text extracted from PDF", ErrExtractionFailed)
	}
	return text, nil
}

func parsePDF(ctx context.Context, path string) (string, error) {
	// pdftotext copes better with multi-column layouts
	text, err := parseWithPdftotext(ctx, path)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	return parseWithGoLib(path)
}

func parseWithPdftotext(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not found: %w", err)
	}
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(output), nil
}

func parseWithGoLib(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// a broken page should not hide the rest of the document
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\x00", " ")
	text = strings.ToValidUTF8(text, "")
	return strings.TrimSpace(text)
}
