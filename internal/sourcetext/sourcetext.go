// Package sourcetext turns uploaded documents into the plain text that
// assessments and lesson plans are generated from.
package sourcetext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/eadteachers/teachkit/internal/apperr"
)

// LessonPlanPages is how many leading pages of a syllabus PDF are read for
// a lesson plan. Assessments read every page.
const LessonPlanPages = 10

// User-facing failures.
var (
	ErrNotPDF     = apperr.Userf(apperr.KindInvalidInput, "source text", "Please select a valid PDF file")
	ErrNoText     = apperr.Userf(apperr.KindInvalidInput, "source text", "Could not extract text from PDF. Please try a different file.")
	ErrUnreadable = apperr.Userf(apperr.KindInvalidInput, "source text", "Failed to read PDF content. Please try a different file.")
)

// FromPDF extracts the text of the first maxPages pages of a PDF, joining
// pages with a single space. maxPages <= 0 reads every page.
func FromPDF(r io.ReaderAt, size int64, maxPages int) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	n := reader.NumPage()
	if maxPages > 0 && maxPages < n {
		n = maxPages
	}

	var pages []string
	fonts := map[string]*pdf.Font{}
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrUnreadable, i, err)
		}
		if text = collapseWhitespace(text); text != "" {
			pages = append(pages, text)
		}
	}

	out := strings.Join(pages, " ")
	if out == "" {
		return "", ErrNoText
	}
	return out, nil
}

// FromBytes extracts text from an uploaded file. PDFs are recognized by
// their header; anything else must look like text.
func FromBytes(name string, data []byte, maxPages int) (string, error) {
	if isPDF(data) {
		return FromPDF(bytes.NewReader(data), int64(len(data)), maxPages)
	}
	if strings.EqualFold(filepath.Ext(name), ".pdf") || !isProbablyText(data) {
		return "", ErrNotPDF
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", apperr.Userf(apperr.KindInvalidInput, "source text", "Please enter text or upload a PDF file")
	}
	return text, nil
}

// FromFile reads path and extracts its text.
func FromFile(path string, maxPages int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.Userf(apperr.KindInvalidInput, "source text", "File not found: %s", path)
		}
		return "", apperr.New(apperr.KindInvalidInput, "source text", err)
	}
	return FromBytes(filepath.Base(path), data, maxPages)
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

// isProbablyText accepts data with no NUL bytes that is mostly printable.
func isProbablyText(b []byte) bool {
	sample := b[:min(len(b), 4096)]
	if len(sample) == 0 {
		return true
	}
	good := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || c >= 0x20 {
			good++
		}
	}
	return float64(good)/float64(len(sample)) > 0.9
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
